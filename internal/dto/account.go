package dto

type CreateAccountRequest struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	IsDefault bool   `json:"is_default"`
}

type UpdateDefaultAccountRequest struct {
	AccountID string `json:"account_id"`
}

type AccountResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	Balance          string `json:"balance"`
	IsDefault        bool   `json:"is_default"`
	TransactionCount int    `json:"transaction_count"`
	CreatedAt        string `json:"created_at"`
}
