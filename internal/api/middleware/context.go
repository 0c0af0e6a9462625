package middleware

import (
	"context"
	"net"
	"net/http"
)

type contextKey string

const clientKeyKey contextKey = "client_key"

func setClientKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, clientKeyKey, key)
}

// ClientKey returns the rate-limit identity for the request: the value set
// by the auth middleware when present, otherwise the remote host.
func ClientKey(r *http.Request) string {
	if key, ok := r.Context().Value(clientKeyKey).(string); ok && key != "" {
		return key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
