package util

import (
	"net"
	"net/http"
	"strings"
	"time"
)

// NewHTTPClient returns a client with its own copy of the default transport
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// HTTPClientIP returns the address of the client. The leftmost X-Forwarded-For
// entry wins over the connection address.
func HTTPClientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without port
		return net.ParseIP(r.RemoteAddr)
	}

	return net.ParseIP(host)
}
