package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"swiftincorp.ng/api/internal/paystack"
	"swiftincorp.ng/api/models"
)

func webhookRequest(body string, secret string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(body))
	if secret != "" {
		req.Header.Set(paystack.SignatureHeader, paystack.SignBody(secret, []byte(body)))
	}
	return req
}

func chargeSuccessBody(reference, customerEmail, serviceName string) string {
	return fmt.Sprintf(`{
		"event": "charge.success",
		"data": {
			"reference": %q,
			"amount": 1250000,
			"currency": "NGN",
			"customer": {"email": %q},
			"metadata": {"service_name": %q}
		}
	}`, reference, customerEmail, serviceName)
}

func TestInitializePayment(t *testing.T) {
	env := newTestEnv(t)

	body := `{"email":"buyer@example.com","amount":"₦12,500","service_name":"CAC Registration"}`
	rec := env.do(t, httptest.NewRequest(http.MethodPost, "/api/payments/initialize", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	}
	decodeBody(t, rec, &resp)
	if resp.AuthorizationURL == "" || resp.Reference == "" {
		t.Errorf("resp = %+v", resp)
	}

	if len(env.gateway.calls) != 1 {
		t.Fatalf("gateway calls = %d", len(env.gateway.calls))
	}
	call := env.gateway.calls[0]
	if call.AmountKobo != 1250000 {
		t.Errorf("amount kobo = %d, want 1250000", call.AmountKobo)
	}
	if call.Metadata["service_name"] != "CAC Registration" {
		t.Errorf("metadata = %v", call.Metadata)
	}
	if call.CallbackURL != "https://swiftincorp.ng/payment/success" {
		t.Errorf("callback = %q", call.CallbackURL)
	}
}

func TestInitializePaymentValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"missing email", `{"amount":"5000"}`},
		{"malformed email", `{"email":"nope","amount":"5000"}`},
		{"zero amount", `{"email":"a@b.com","amount":"0"}`},
		{"empty amount", `{"email":"a@b.com","amount":""}`},
		{"no digits", `{"email":"a@b.com","amount":"free"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, httptest.NewRequest(http.MethodPost, "/api/payments/initialize", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if len(env.gateway.calls) != 0 {
				t.Error("invalid request must not reach the gateway")
			}
		})
	}
}

func TestInitializePaymentGatewayFailureIsOpaque(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.err = errors.New("paystack: connection refused to 10.1.2.3")

	body := `{"email":"buyer@example.com","amount":"5000"}`
	rec := env.do(t, httptest.NewRequest(http.MethodPost, "/api/payments/initialize", strings.NewReader(body)))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.1.2.3") {
		t.Error("gateway detail leaked to the client")
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	env := newTestEnv(t)

	app := &models.Application{ID: "a1", Email: "buyer@example.com", Status: models.StatusPending}
	env.store.SaveApplication(context.Background(), app)

	body := chargeSuccessBody("ref-1", "buyer@example.com", "CAC Registration")

	req := webhookRequest(body, "wrong-secret")
	rec := env.do(t, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	// zero side effects: no email, no dedupe record, no status change
	if env.mailer.count() != 0 {
		t.Error("unverified event must not send mail")
	}
	if first, _ := env.store.MarkPaymentProcessed(context.Background(), "ref-1"); !first {
		t.Error("unverified event must not consume the reference")
	}
	got, _ := env.store.GetApplication(context.Background(), "a1")
	if got.Status != models.StatusPending {
		t.Errorf("status mutated to %s", got.Status)
	}
}

func TestWebhookMissingSignature(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, webhookRequest(`{"event":"charge.success"}`, ""))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestWebhookChargeSuccess(t *testing.T) {
	env := newTestEnv(t)

	app := &models.Application{
		ID:        "a1",
		Email:     "buyer@example.com",
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}
	env.store.SaveApplication(context.Background(), app)

	body := chargeSuccessBody("ref-1", "buyer@example.com", "CAC Registration")
	rec := env.do(t, webhookRequest(body, testWebhookSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if env.mailer.count() != 1 {
		t.Fatalf("mails sent = %d, want 1", env.mailer.count())
	}
	mail := env.mailer.sent[0]
	if mail.To != "buyer@example.com" {
		t.Errorf("mail to = %q", mail.To)
	}
	if !strings.Contains(mail.Body, "ref-1") || !strings.Contains(mail.Body, "CAC Registration") {
		t.Error("confirmation mail missing reference or service name")
	}

	got, _ := env.store.GetApplication(context.Background(), "a1")
	if got.Status != models.StatusInProgress {
		t.Errorf("status = %s, want in-progress", got.Status)
	}
	if got.PaymentRef != "ref-1" {
		t.Errorf("payment ref = %q", got.PaymentRef)
	}
}

func TestWebhookReplayIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	env.store.SaveApplication(context.Background(), &models.Application{
		ID: "a1", Email: "buyer@example.com", Status: models.StatusPending,
	})

	body := chargeSuccessBody("ref-1", "buyer@example.com", "")
	for i := 0; i < 3; i++ {
		rec := env.do(t, webhookRequest(body, testWebhookSecret))
		if rec.Code != http.StatusOK {
			t.Fatalf("delivery %d status = %d", i+1, rec.Code)
		}
	}

	if env.mailer.count() != 1 {
		t.Errorf("mails sent = %d, want exactly 1 across replays", env.mailer.count())
	}
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	env := newTestEnv(t)

	body := `{"event":"transfer.success","data":{"reference":"ref-9"}}`
	rec := env.do(t, webhookRequest(body, testWebhookSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 ack", rec.Code)
	}
	if env.mailer.count() != 0 {
		t.Error("non-charge event must not send mail")
	}
	// reference must remain unconsumed for a later charge.success
	if first, _ := env.store.MarkPaymentProcessed(context.Background(), "ref-9"); !first {
		t.Error("ignored event must not consume the reference")
	}
}

func TestWebhookMissingReference(t *testing.T) {
	env := newTestEnv(t)

	body := `{"event":"charge.success","data":{"customer":{"email":"a@b.com"}}}`
	rec := env.do(t, webhookRequest(body, testWebhookSecret))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWebhookInvalidJSONAfterValidSignature(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, webhookRequest(`not json`, testWebhookSecret))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWebhookMailFailureStillAcks(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.err = errors.New("smtp down")

	body := chargeSuccessBody("ref-1", "buyer@example.com", "")
	rec := env.do(t, webhookRequest(body, testWebhookSecret))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d: mail failure must not trigger a gateway retry", rec.Code)
	}
}

func TestWebhookCorrelationByPaymentRef(t *testing.T) {
	env := newTestEnv(t)

	// two pending cases for the same email, one pre-linked by reference
	env.store.SaveApplication(context.Background(), &models.Application{
		ID: "a1", Email: "buyer@example.com", Status: models.StatusPending, PaymentRef: "ref-1",
	})
	env.store.SaveApplication(context.Background(), &models.Application{
		ID: "a2", Email: "buyer@example.com", Status: models.StatusPending,
	})

	body := chargeSuccessBody("ref-1", "buyer@example.com", "")
	env.do(t, webhookRequest(body, testWebhookSecret))

	a1, _ := env.store.GetApplication(context.Background(), "a1")
	a2, _ := env.store.GetApplication(context.Background(), "a2")
	if a1.Status != models.StatusInProgress {
		t.Errorf("linked case status = %s", a1.Status)
	}
	if a2.Status != models.StatusPending {
		t.Errorf("unlinked case mutated to %s", a2.Status)
	}
}

func TestWebhookAmbiguousCorrelationMutatesNothing(t *testing.T) {
	env := newTestEnv(t)

	env.store.SaveApplication(context.Background(), &models.Application{
		ID: "a1", Email: "buyer@example.com", Status: models.StatusPending,
	})
	env.store.SaveApplication(context.Background(), &models.Application{
		ID: "a2", Email: "buyer@example.com", Status: models.StatusPending,
	})

	body := chargeSuccessBody("ref-1", "buyer@example.com", "")
	rec := env.do(t, webhookRequest(body, testWebhookSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	for _, id := range []string{"a1", "a2"} {
		app, _ := env.store.GetApplication(context.Background(), id)
		if app.Status != models.StatusPending {
			t.Errorf("ambiguous match mutated %s to %s", id, app.Status)
		}
	}
}

func TestInitializePaymentRateLimited(t *testing.T) {
	env := newTestEnv(t)

	body := `{"email":"buyer@example.com","amount":"5000"}`
	var last int
	for i := 0; i < 11; i++ {
		rec := env.do(t, httptest.NewRequest(http.MethodPost, "/api/payments/initialize", strings.NewReader(body)))
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("11th request status = %d, want 429", last)
	}
}
