package llm

import "net/http"

// headerTransport injects the caller's custom headers into every request.
// Used for SDK clients that have no per-request header hook.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range t.headers {
		clone.Header.Set(k, v)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// httpClientWith returns an *http.Client applying the given headers, or
// nil when there are none (letting the SDK use its default client).
func httpClientWith(headers map[string]string) *http.Client {
	if len(headers) == 0 {
		return nil
	}
	return &http.Client{Transport: &headerTransport{headers: headers}}
}
