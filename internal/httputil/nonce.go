package httputil

import (
	"context"
	"crypto/rand"
	"encoding/base64"
)

type nonceKey struct{}

const nonceBytes = 16

// GenerateNonce returns a fresh base64url value for a CSP script-src/style-src nonce.
func GenerateNonce() string {
	b := make([]byte, nonceBytes)
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// ContextWithNonce stores the request's nonce so templates can stamp inline tags with it.
func ContextWithNonce(ctx context.Context, nonce string) context.Context {
	return context.WithValue(ctx, nonceKey{}, nonce)
}

func NonceFromContext(ctx context.Context) string {
	nonce, _ := ctx.Value(nonceKey{}).(string)
	return nonce
}
