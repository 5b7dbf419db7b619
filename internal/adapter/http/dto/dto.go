package dto

// WithdrawRequest is the request body for wallet withdrawals.
// Amount is a decimal string in major units ("40.00"); floats are not
// accepted on money fields.
type WithdrawRequest struct {
	Amount        string `json:"amount" binding:"required"`
	AsKitchen     bool   `json:"as_kitchen"`
	AccountNumber string `json:"account_number" binding:"required,min=6,max=20"`
	BankCode      string `json:"bank_code" binding:"required,min=3,max=10"`
	AccountName   string `json:"account_name" binding:"required,min=1,max=100"`
}

// PaymentLinkRequest is the request body for creating a checkout link.
type PaymentLinkRequest struct {
	OrderID string `json:"order_id" binding:"required,uuid"`
}

// PaymentLinkResponse is the response body for a created checkout link.
type PaymentLinkResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

// VirtualAccountResponse is the provider account linkage on a wallet.
type VirtualAccountResponse struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankName      string `json:"bank_name"`
}

// WalletResponse is the response body for wallet reads.
type WalletResponse struct {
	ID             string                  `json:"id"`
	OwnerType      string                  `json:"owner_type"`
	Balance        string                  `json:"balance"`
	VirtualAccount *VirtualAccountResponse `json:"virtual_account,omitempty"`
}

// TransactionResponse is one ledger entry in a statement.
type TransactionResponse struct {
	ID          string  `json:"id"`
	Direction   string  `json:"direction"`
	Amount      string  `json:"amount"`
	Purpose     string  `json:"purpose"`
	ExternalRef *string `json:"external_ref,omitempty"`
	Note        string  `json:"note,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// StatementResponse is the paginated ledger listing for a wallet.
type StatementResponse struct {
	Entries  []TransactionResponse `json:"entries"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}
