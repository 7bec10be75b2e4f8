package client

import (
	"net/http"
)

// Transport attaches the session headers of a Manager to every request.
type Transport struct {
	Manager *Manager
	Base    http.RoundTripper
}

// RoundTrip sends a copy of req carrying the current session headers
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	headers := t.Manager.Headers(req.Context())
	if len(headers) == 0 {
		return base.RoundTrip(req)
	}

	out := req.Clone(req.Context())
	for name, values := range headers {
		out.Header[name] = values
	}
	return base.RoundTrip(out)
}

// NewHTTPClient returns an http.Client whose requests carry the session headers.
func NewHTTPClient(m *Manager, base http.RoundTripper) *http.Client {
	return &http.Client{Transport: &Transport{Manager: m, Base: base}}
}
