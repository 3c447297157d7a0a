package models

// PaymentEvent is the decoded body of a Paystack webhook notification.
// It is not persisted as its own entity; only the reference is recorded,
// for dedupe.
type PaymentEvent struct {
	Event string           `json:"event"`
	Data  PaymentEventData `json:"data"`
}

type PaymentEventData struct {
	Reference string            `json:"reference"`
	Amount    int64             `json:"amount"` // kobo
	Currency  string            `json:"currency"`
	Customer  PaymentCustomer   `json:"customer"`
	Metadata  map[string]string `json:"metadata"`
}

type PaymentCustomer struct {
	Email string `json:"email"`
}

// ServiceName returns the purchased service recorded in the event
// metadata, if any.
func (e *PaymentEvent) ServiceName() string {
	if e.Data.Metadata == nil {
		return ""
	}
	return e.Data.Metadata["service_name"]
}
