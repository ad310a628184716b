package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			w.Write([]byte(`{"status":"healthy"}`))
		case "/api/products":
			w.Write([]byte(`{"data":[{"slug":"mermer","name":"Mermer","price":"349.9","stock":4}],"total":1}`))
		case "/api/orders/track/DK-20240310-ABC234":
			w.Write([]byte(`{"order_number":"DK-20240310-ABC234","status":"shipped","total":"1299.6","items":[{"product_name":"Mermer","quantity":2}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"Kayıt bulunamadı"}}`))
		}
	}))
	defer srv.Close()

	tests := []struct {
		name     string
		args     []string
		code     int
		contains string
	}{
		{"health", []string{"-url", srv.URL, "health"}, 0, "healthy"},
		{"products", []string{"-url", srv.URL, "products", "-q", "mermer"}, 0, "349.90"},
		{"track", []string{"-url", srv.URL, "track", "DK-20240310-ABC234", "a@example.com"}, 0, "2x Mermer"},
		{"track missing email", []string{"-url", srv.URL, "track", "DK-20240310-ABC234"}, 2, "usage"},
		{"unknown command", []string{"-url", srv.URL, "refund"}, 2, "usage"},
		{"no command", []string{"-url", srv.URL}, 2, "usage"},
		{"api error", []string{"-url", srv.URL, "track", "DK-X", "a@example.com"}, 1, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, stdout.String()+stderr.String(), tt.contains)
		})
	}
}
