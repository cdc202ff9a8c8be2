package dto

type CheckoutRequest struct {
	PaymentID int64  `json:"payment_id" binding:"required"`
	Method    string `json:"method" binding:"required"` // ONLINE_CARD, ONLINE_MAYA, ONLINE_MAYA_WALLET
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	Reference   string `json:"reference"`
}

type VerifyCallbackRequest struct {
	Reference string `form:"reference" binding:"required"`
}
