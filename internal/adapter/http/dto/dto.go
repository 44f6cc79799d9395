package dto

// InitializePaymentRequest is the request body for payment
// initialization. Value-object validation (currency, amount ceiling,
// email shape, URL shape) happens in the domain layer; binding tags
// only reject requests that are structurally unusable.
type InitializePaymentRequest struct {
	ExternalUserID    string  `json:"externalUserId" binding:"required,max=254"`
	Amount            float64 `json:"amount" binding:"required,gt=0"`
	Currency          string  `json:"currency" binding:"required,len=3"`
	Purpose           string  `json:"purpose" binding:"required,max=32"`
	Provider          string  `json:"provider" binding:"required,max=32"`
	AppName           string  `json:"appName" binding:"required,max=100"`
	ExternalReference string  `json:"externalReference" binding:"required,max=100"`
	RedirectURL       string  `json:"redirectUrl" binding:"required,max=2048"`
	NotificationURL   string  `json:"notificationUrl" binding:"required,max=2048"`
}

// InitializePaymentResponse is the response body for successful
// initialization: where to send the payer, and our reference for later
// status correlation.
type InitializePaymentResponse struct {
	Reference   string `json:"reference"`
	CheckoutURL string `json:"checkoutUrl"`
}

// WebhookAck is the body returned to providers for every webhook
// delivery, regardless of internal outcome.
type WebhookAck struct {
	Status string `json:"status"`
}
