package handler

import (
	"net"
	"net/http"
	"strconv"
)

// clientIP trusts chi's RealIP middleware to have rewritten RemoteAddr
// and strips the port when one is present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// optionalIDParam parses an optional numeric query parameter; absent or
// empty means nil.
func optionalIDParam(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
