package models

import "time"

type ApplicationStatus string

const (
	StatusPending    ApplicationStatus = "pending"
	StatusInProgress ApplicationStatus = "in-progress"
	StatusCompleted  ApplicationStatus = "completed"
	StatusRejected   ApplicationStatus = "rejected"
)

// ValidStatus reports whether s is one of the statuses an admin may set.
func ValidStatus(s ApplicationStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// Application is one business-registration case. Applications are never
// deleted; status moves from pending towards completed either by admin
// action or by the payment webhook.
type Application struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	BusinessName string            `json:"business_name"`
	ServiceName  string            `json:"service_name"`
	Details      map[string]string `json:"details,omitempty"`
	Status       ApplicationStatus `json:"status"`
	IsExpress    bool              `json:"is_express"`
	PaymentRef   string            `json:"payment_ref,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// TrackingView is the sanitized shape returned by the public tracking
// endpoint. Director details and payment references stay internal.
type TrackingView struct {
	ID           string            `json:"id"`
	BusinessName string            `json:"business_name"`
	ServiceName  string            `json:"service_name"`
	Status       ApplicationStatus `json:"status"`
	IsExpress    bool              `json:"is_express"`
	CreatedAt    time.Time         `json:"created_at"`
}

func (a *Application) Tracking() TrackingView {
	return TrackingView{
		ID:           a.ID,
		BusinessName: a.BusinessName,
		ServiceName:  a.ServiceName,
		Status:       a.Status,
		IsExpress:    a.IsExpress,
		CreatedAt:    a.CreatedAt,
	}
}
