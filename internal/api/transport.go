package api

import (
	"context"
	"net/http"
)

type bearerKey struct{}

func withBearer(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, bearerKey{}, token)
}

type authenticatedTransport struct {
	underlyingTransport http.RoundTripper
}

// RoundTrip attaches the bearer token carried by the request context.
func (t *authenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token, ok := req.Context().Value(bearerKey{}).(string); ok {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.underlyingTransport.RoundTrip(req)
}
