// Package paystack wraps the payment gateway's transaction API and the
// webhook signature scheme.
package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries the gateway's HMAC-SHA512 hex digest of the raw
// webhook body.
const SignatureHeader = "X-Paystack-Signature"

// ErrGatewayUnavailable is returned for any network failure or non-2xx
// gateway response. Callers surface it as a generic upstream failure; the
// underlying detail stays in the server log.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Checkout is the result of initializing a transaction: where to send the
// payer, and the reference the webhook will later carry.
type Checkout struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Gateway initializes checkout sessions. Handlers depend on the interface
// so webhook and initialization logic is testable without the live API.
type Gateway interface {
	Initialize(ctx context.Context, email string, amountKobo int64, callbackURL string, metadata map[string]string) (*Checkout, error)
}

type Client struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type initializeRequest struct {
	Email       string            `json:"email"`
	Amount      string            `json:"amount"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type initializeResponse struct {
	Status  bool     `json:"status"`
	Message string   `json:"message"`
	Data    Checkout `json:"data"`
}

func (c *Client) Initialize(ctx context.Context, email string, amountKobo int64, callbackURL string, metadata map[string]string) (*Checkout, error) {
	payload, err := json.Marshal(initializeRequest{
		Email:       email,
		Amount:      strconv.FormatInt(amountKobo, 10),
		CallbackURL: callbackURL,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var body initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if !body.Status || body.Data.AuthorizationURL == "" {
		return nil, fmt.Errorf("%w: %s", ErrGatewayUnavailable, body.Message)
	}
	return &body.Data, nil
}

// ParseAmountKobo converts a human-entered display amount into minor
// currency units: strip every non-digit, parse, multiply by 100. The
// canonical example is "₦12,500" -> 1250000.
func ParseAmountKobo(amount string) (int64, error) {
	var digits strings.Builder
	for _, r := range amount {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, fmt.Errorf("amount %q contains no digits", amount)
	}

	naira, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q out of range", amount)
	}
	if naira <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}
	return naira * 100, nil
}

// VerifySignature recomputes the HMAC-SHA512 digest of the exact raw body
// and compares it against the signature header in constant time.
func VerifySignature(secretKey string, body []byte, signature string) bool {
	provided, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}

	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	return hmac.Equal(provided, mac.Sum(nil))
}

// SignBody computes the hex signature the gateway would send for body.
// Used by tests and local tooling.
func SignBody(secretKey string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
