package entities

// PaymentConfirmation is the payload of a payment.succeeded event emitted
// by the payment service once a charge goes through.
type PaymentConfirmation struct {
	OrderID         string
	StripePaymentID string
	ReceiptURL      string
}
