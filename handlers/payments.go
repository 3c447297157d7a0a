package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"swiftincorp.ng/api/internal/email"
	"swiftincorp.ng/api/internal/logger"
	"swiftincorp.ng/api/internal/paystack"
	"swiftincorp.ng/api/models"
)

type initializePaymentRequest struct {
	Email       string `json:"email"`
	Amount      string `json:"amount"`
	ServiceName string `json:"service_name"`
}

type initializePaymentResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

func (s *Server) InitializePayment(w http.ResponseWriter, r *http.Request) {
	var req initializePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	amountKobo, err := paystack.ParseAmountKobo(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	checkout, err := s.Gateway.Initialize(r.Context(), req.Email, amountKobo, s.CallbackURL, map[string]string{
		"service_name": req.ServiceName,
	})
	if err != nil {
		// Gateway internals never reach the client.
		writeUpstreamError(w, "initialize payment", err)
		return
	}

	logger.Info("payment initialized", map[string]interface{}{
		"reference":   checkout.Reference,
		"amount_kobo": amountKobo,
		"service":     req.ServiceName,
	})
	writeJSON(w, http.StatusOK, initializePaymentResponse{
		AuthorizationURL: checkout.AuthorizationURL,
		Reference:        checkout.Reference,
	})
}

const maxWebhookBytes = int64(1 << 20)

// PaymentWebhook handles gateway notifications. Order is structural:
// verify the signature over the exact raw body before anything else; an
// unverified event triggers no email and no state change. Verified events
// are deduplicated on the transaction reference because the gateway
// retries until it sees 200.
func (s *Server) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	signature := r.Header.Get(paystack.SignatureHeader)
	if !paystack.VerifySignature(s.WebhookSecret, payload, signature) {
		logger.Warn("webhook signature mismatch", map[string]interface{}{
			"remote_addr": r.RemoteAddr,
		})
		writeError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event models.PaymentEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if event.Event != "charge.success" {
		logger.Info("ignoring webhook event", map[string]interface{}{
			"event": event.Event,
		})
		writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
		return
	}

	reference := event.Data.Reference
	if reference == "" {
		writeError(w, http.StatusBadRequest, "missing transaction reference")
		return
	}

	first, err := s.Storage.MarkPaymentProcessed(r.Context(), reference)
	if err != nil {
		// The event was not processed; a 500 lets the gateway retry.
		writeUpstreamError(w, "record payment reference", err)
		return
	}
	if !first {
		logger.Info("duplicate webhook delivery ignored", map[string]interface{}{
			"reference": reference,
		})
		writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
		return
	}

	s.handleChargeSuccess(r.Context(), &event)

	// Side-effect failures are logged above, never surfaced: a non-200
	// here would make the gateway retry an already-recorded event.
	writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
}

func (s *Server) handleChargeSuccess(ctx context.Context, event *models.PaymentEvent) {
	reference := event.Data.Reference
	customerEmail := event.Data.Customer.Email

	if customerEmail != "" {
		subject, body := email.PaymentConfirmation(event.ServiceName(), reference)
		if err := s.Mailer.Send(customerEmail, subject, body); err != nil {
			logger.Error("confirmation email failed", map[string]interface{}{
				"reference": reference,
				"error":     err.Error(),
			})
		}
	}

	app, err := s.correlateApplication(ctx, reference, customerEmail)
	if err != nil {
		logger.Error("application correlation failed", map[string]interface{}{
			"reference": reference,
			"error":     err.Error(),
		})
		return
	}
	if app == nil {
		logger.Info("no application matched payment", map[string]interface{}{
			"reference": reference,
		})
		return
	}

	app.Status = models.StatusInProgress
	app.PaymentRef = reference
	app.UpdatedAt = time.Now().UTC()
	if err := s.Storage.SaveApplication(ctx, app); err != nil {
		logger.Error("application update failed", map[string]interface{}{
			"reference":      reference,
			"application_id": app.ID,
			"error":          err.Error(),
		})
		return
	}

	logger.Info("payment applied to application", map[string]interface{}{
		"reference":      reference,
		"application_id": app.ID,
	})
}

// correlateApplication links a verified payment to at most one
// application. An exact payment_ref match wins; otherwise the customer
// email must identify exactly one pending case. Anything ambiguous
// resolves to no match rather than a guess.
func (s *Server) correlateApplication(ctx context.Context, reference, customerEmail string) (*models.Application, error) {
	app, err := s.Storage.FindApplicationByPaymentRef(ctx, reference)
	if err != nil {
		return nil, err
	}
	if app != nil {
		return app, nil
	}

	if customerEmail == "" {
		return nil, nil
	}
	candidates, err := s.Storage.FindApplicationsByEmail(ctx, customerEmail)
	if err != nil {
		return nil, err
	}

	var pending []*models.Application
	for _, candidate := range candidates {
		if candidate.Status == models.StatusPending {
			pending = append(pending, candidate)
		}
	}
	if len(pending) != 1 {
		if len(pending) > 1 {
			logger.Warn("ambiguous payment correlation", map[string]interface{}{
				"reference":  reference,
				"candidates": len(pending),
			})
		}
		return nil, nil
	}
	return pending[0], nil
}
