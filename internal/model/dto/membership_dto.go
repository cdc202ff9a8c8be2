package dto

type PurchaseRequest struct {
	OfferID       int64  `json:"offer_id" binding:"required"`
	PromoID       *int64 `json:"promo_id"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

type PurchaseResponse struct {
	SubscriptionID int64   `json:"subscription_id"`
	PaymentID      int64   `json:"payment_id"`
	PaymentCode    string  `json:"payment_code"`
	PricePaid      float64 `json:"price_paid"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
}
