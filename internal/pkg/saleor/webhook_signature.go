package saleor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// WebhookVerifier checks the saleor-signature header on inbound webhooks.
// The secret is the one shared with the Saleor instance (SECRET_KEY), not the
// ShipRocket secret.
type WebhookVerifier struct {
	secret []byte
}

func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	s := strings.TrimSpace(secret)
	if s == "" {
		return nil, errors.New("SECRET_KEY is not configured")
	}
	return &WebhookVerifier{secret: []byte(s)}, nil
}

// Verify recomputes the hex HMAC-SHA256 of the raw payload and compares in
// constant time. Any malformed or missing signature yields false, never an
// error.
func (v *WebhookVerifier) Verify(payload []byte, signature string) bool {
	sig := strings.TrimSpace(signature)
	if sig == "" {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(sig)))
}

// Sign computes the hex signature for a payload. Used by tests and by the
// manual sync tooling to self-sign requests.
func (v *WebhookVerifier) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
