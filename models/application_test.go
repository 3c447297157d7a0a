package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []ApplicationStatus{StatusPending, StatusInProgress, StatusCompleted, StatusRejected} {
		if !ValidStatus(s) {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []ApplicationStatus{"", "archived", "Pending"} {
		if ValidStatus(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestTrackingViewOmitsInternalFields(t *testing.T) {
	app := &Application{
		ID:           "a1",
		Email:        "buyer@example.com",
		BusinessName: "Acme Ltd",
		Status:       StatusInProgress,
		PaymentRef:   "ref-1",
		Details:      map[string]string{"directors": "2"},
	}

	raw, err := json.Marshal(app.Tracking())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	for _, leaked := range []string{"buyer@example.com", "ref-1", "directors"} {
		if strings.Contains(body, leaked) {
			t.Errorf("tracking view leaked %q: %s", leaked, body)
		}
	}
	if !strings.Contains(body, "Acme Ltd") {
		t.Error("tracking view should carry the business name")
	}
}

func TestPaymentEventServiceName(t *testing.T) {
	event := &PaymentEvent{}
	if event.ServiceName() != "" {
		t.Error("nil metadata should read as empty")
	}
	event.Data.Metadata = map[string]string{"service_name": "CAC Registration"}
	if event.ServiceName() != "CAC Registration" {
		t.Errorf("service name = %q", event.ServiceName())
	}
}
