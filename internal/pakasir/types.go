package pakasir

// Payment is the object returned by the transactioncreate endpoint.
// payment_number carries the raw QR string.
type Payment struct {
	PaymentNumber string `json:"payment_number"`
	Amount        int64  `json:"amount"`
	Fee           int64  `json:"fee"`
	TotalPayment  int64  `json:"total_payment"`
	ExpiredAt     string `json:"expired_at"`
}

type createResponse struct {
	Payment Payment `json:"payment"`
}

// TransactionDetail is the authoritative record returned by the
// transactiondetail endpoint. Status is what webhook handling trusts,
// never the inbound notification body.
type TransactionDetail struct {
	OrderID       string `json:"order_id"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method,omitempty"`
	CompletedAt   string `json:"completed_at,omitempty"`
}

type detailResponse struct {
	Transaction TransactionDetail `json:"transaction"`
}

// transactionRequest is the shared payload for create and cancel calls.
// Authentication rides in the body per the provider contract.
type transactionRequest struct {
	Project string `json:"project"`
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	APIKey  string `json:"api_key"`
}
