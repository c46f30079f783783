package saleor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWebhookVerifier(t *testing.T) {
	t.Parallel()

	_, err := NewWebhookVerifier("")
	assert.Error(t, err)
	_, err = NewWebhookVerifier("   ")
	assert.Error(t, err)

	v, err := NewWebhookVerifier("secret")
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestWebhookVerify(t *testing.T) {
	t.Parallel()

	v, err := NewWebhookVerifier("webhook-secret")
	require.NoError(t, err)
	other, err := NewWebhookVerifier("different-secret")
	require.NoError(t, err)

	payload := []byte(`{"id":"UHJvZHVjdDox","name":"Trail Shoe"}`)
	sig := v.Sign(payload)

	tests := []struct {
		name      string
		payload   []byte
		signature string
		want      bool
	}{
		{name: "valid", payload: payload, signature: sig, want: true},
		{name: "uppercase hex accepted", payload: payload, signature: strings.ToUpper(sig), want: true},
		{name: "mutated payload", payload: []byte(`{"id":"UHJvZHVjdDoy"}`), signature: sig, want: false},
		{name: "wrong secret", payload: payload, signature: other.Sign(payload), want: false},
		{name: "empty signature", payload: payload, signature: "", want: false},
		{name: "whitespace signature", payload: payload, signature: "   ", want: false},
		{name: "not hex", payload: payload, signature: "zz-not-hex", want: false},
		{name: "truncated", payload: payload, signature: sig[:10], want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, v.Verify(tt.payload, tt.signature))
		})
	}
}
