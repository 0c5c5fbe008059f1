package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"direct connection", "", "203.0.113.7:52100", "203.0.113.7"},
		{"single forwarded hop", "198.51.100.4", "10.0.0.1:80", "198.51.100.4"},
		{"first hop wins over proxies", "198.51.100.4, 10.0.0.2, 10.0.0.1", "10.0.0.1:80", "198.51.100.4"},
		{"forwarded with spaces", " 198.51.100.4 , 10.0.0.2", "10.0.0.1:80", "198.51.100.4"},
		{"remote addr without port", "", "203.0.113.7", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/v1/mood", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, clientIP(r))
		})
	}
}

func TestGetLimiterReusesBucketPerIP(t *testing.T) {
	a := getLimiter("192.0.2.10")
	b := getLimiter("192.0.2.10")
	other := getLimiter("192.0.2.11")

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
}
