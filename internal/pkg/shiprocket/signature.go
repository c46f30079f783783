package shiprocket

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

// Signer computes and checks the X-Api-HMAC-SHA256 header used on both
// directions of ShipRocket traffic. The secret here is the ShipRocket shared
// secret, never the Saleor webhook secret.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) (*Signer, error) {
	s := strings.TrimSpace(secret)
	if s == "" {
		return nil, errors.New("SHIPROCKET_SECRET_KEY is not configured")
	}
	return &Signer{secret: []byte(s)}, nil
}

// canonicalize turns a payload into the byte form that gets signed. Raw bytes
// and strings pass through untouched so signatures over a received body match
// exactly; anything else is signed over its JSON serialization.
func canonicalize(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case []byte:
		return p, nil
	case string:
		return []byte(p), nil
	default:
		return json.Marshal(p)
	}
}

// Sign returns the base64 HMAC-SHA256 of the payload.
func (s *Signer) Sign(payload any) (string, error) {
	data, err := canonicalize(payload)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(data)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Verify recomputes the signature and compares in constant time. It reports
// false for any mismatch, including malformed or differently sized
// signatures, and never panics or returns an error to the caller.
func (s *Signer) Verify(payload any, signature string) bool {
	sig := strings.TrimSpace(signature)
	if sig == "" {
		return false
	}
	expected, err := s.Sign(payload)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(sig))
}
