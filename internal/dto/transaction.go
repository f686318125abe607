package dto

type CreateTransactionRequest struct {
	AccountID         string `json:"account_id"`
	Type              string `json:"type"`
	Amount            string `json:"amount"`
	Description       string `json:"description"`
	Category          string `json:"category"`
	Date              string `json:"date"`
	IsRecurring       bool   `json:"is_recurring"`
	RecurringInterval string `json:"recurring_interval,omitempty"`
}

type TransactionResponse struct {
	ID                string `json:"id"`
	AccountID         string `json:"account_id"`
	AccountName       string `json:"account_name,omitempty"`
	Type              string `json:"type"`
	Amount            string `json:"amount"`
	Description       string `json:"description"`
	Category          string `json:"category"`
	Date              string `json:"date"`
	Status            string `json:"status"`
	IsRecurring       bool   `json:"is_recurring"`
	RecurringInterval string `json:"recurring_interval,omitempty"`
	NextRecurringDate string `json:"next_recurring_date,omitempty"`
}
