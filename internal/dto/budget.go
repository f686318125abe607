package dto

type SetBudgetRequest struct {
	Amount string `json:"amount"`
}

type BudgetResponse struct {
	ID             string  `json:"id"`
	Amount         string  `json:"amount"`
	SpentThisMonth string  `json:"spent_this_month"`
	PercentageUsed float64 `json:"percentage_used"`
	LastAlertSent  string  `json:"last_alert_sent,omitempty"`
}
