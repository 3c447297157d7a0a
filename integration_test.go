package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"swiftincorp.ng/api/handlers"
	"swiftincorp.ng/api/internal/auth"
	"swiftincorp.ng/api/internal/media"
	"swiftincorp.ng/api/internal/paystack"
	"swiftincorp.ng/api/models"
	"swiftincorp.ng/api/storage"
)

const (
	integrationAdmin  = "admin@swiftincorp.ng"
	integrationSecret = "sk_test_integration"
)

type staticIdentity struct{}

func (staticIdentity) Resolve(ctx context.Context, token string) (*auth.Identity, error) {
	if token == "admin-token" {
		return &auth.Identity{ID: "u-1", Email: integrationAdmin}, nil
	}
	return nil, auth.ErrInvalidToken
}

type recordingGateway struct {
	lastReference string
}

func (g *recordingGateway) Initialize(ctx context.Context, email string, amountKobo int64, callbackURL string, metadata map[string]string) (*paystack.Checkout, error) {
	g.lastReference = fmt.Sprintf("ref-%d", amountKobo)
	return &paystack.Checkout{
		AuthorizationURL: "https://checkout.paystack.com/" + g.lastReference,
		Reference:        g.lastReference,
	}, nil
}

type recordingMailer struct {
	sent []string
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.sent = append(m.sent, to+": "+subject)
	return nil
}

type nullObjectStore struct{}

func (nullObjectStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	return "https://media.example.com/" + key, nil
}

func signWebhook(body []byte) string {
	mac := hmac.New(sha512.New, []byte(integrationSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// TestRegistrationFlow walks the full lifecycle: an applicant files a
// case, pays, the gateway webhook moves it to in-progress, tracking shows
// the change, and the admin completes it.
func TestRegistrationFlow(t *testing.T) {
	store := storage.NewMemoryStorage()
	gateway := &recordingGateway{}
	mailer := &recordingMailer{}

	server := handlers.NewServer(handlers.Options{
		Storage:        store,
		Identity:       staticIdentity{},
		Gateway:        gateway,
		Mailer:         mailer,
		Relay:          &media.Relay{Store: nullObjectStore{}},
		AdminEmail:     integrationAdmin,
		WebhookSecret:  integrationSecret,
		CallbackURL:    "https://swiftincorp.ng/payment/success",
		AllowedOrigins: []string{"https://swiftincorp.ng"},
		Version:        "integration",
	})

	ts := httptest.NewServer(server.Router)
	defer ts.Close()

	// applicant files a case
	resp, err := http.Post(ts.URL+"/api/applications", "application/json", strings.NewReader(`{
		"email": "founder@example.com",
		"business_name": "Lagos Textiles Ltd",
		"service_name": "CAC Registration",
		"details": {"nature": "textiles"}
	}`))
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	var app models.Application
	if err := json.NewDecoder(resp.Body).Decode(&app); err != nil {
		t.Fatalf("decode application: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated || app.Status != models.StatusPending {
		t.Fatalf("create status = %d, app status = %s", resp.StatusCode, app.Status)
	}

	// payment initialization
	resp, err = http.Post(ts.URL+"/api/payments/initialize", "application/json", strings.NewReader(`{
		"email": "founder@example.com",
		"amount": "₦25,000",
		"service_name": "CAC Registration"
	}`))
	if err != nil {
		t.Fatalf("initialize payment: %v", err)
	}
	var checkout struct {
		Reference string `json:"reference"`
	}
	json.NewDecoder(resp.Body).Decode(&checkout)
	resp.Body.Close()
	if checkout.Reference == "" {
		t.Fatal("no checkout reference")
	}

	// gateway confirms the charge
	webhook := fmt.Sprintf(`{
		"event": "charge.success",
		"data": {
			"reference": %q,
			"amount": 2500000,
			"currency": "NGN",
			"customer": {"email": "founder@example.com"},
			"metadata": {"service_name": "CAC Registration"}
		}
	}`, checkout.Reference)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/payments/webhook", strings.NewReader(webhook))
	req.Header.Set(paystack.SignatureHeader, signWebhook([]byte(webhook)))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("webhook status = %d", resp.StatusCode)
	}

	if len(mailer.sent) != 1 || !strings.Contains(mailer.sent[0], "founder@example.com") {
		t.Fatalf("confirmation mail = %v", mailer.sent)
	}

	// tracking reflects the paid case
	resp, err = http.Get(ts.URL + "/api/track?query=" + app.ID)
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	var view models.TrackingView
	json.NewDecoder(resp.Body).Decode(&view)
	resp.Body.Close()
	if view.Status != models.StatusInProgress {
		t.Fatalf("tracked status = %s, want in-progress", view.Status)
	}

	// admin completes the case
	req, _ = http.NewRequest(http.MethodPut, ts.URL+"/api/applications/"+app.ID+"/status", strings.NewReader(`{"status":"completed"}`))
	req.Header.Set("Authorization", "Bearer admin-token")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete status = %d", resp.StatusCode)
	}

	if len(mailer.sent) != 2 {
		t.Fatalf("expected completion mail, sent = %v", mailer.sent)
	}

	// the privileged mutation is audited
	logs, _ := store.ListAuditLogs(context.Background(), 0)
	if len(logs) != 1 || logs[0].Actor != integrationAdmin {
		t.Fatalf("audit logs = %+v", logs)
	}
}
