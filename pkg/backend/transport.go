package backend

import "net/http"

// KeyTransport is an http.RoundTripper that authenticates every request with
// a Supabase API key.
type KeyTransport struct {
	// Key is sent as both the apikey header and the bearer token.
	Key string

	// Base is the base RoundTripper used to make the actual HTTP requests.
	// If nil, http.DefaultTransport is used.
	Base http.RoundTripper
}

func (t *KeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	req2 := cloneRequest(req)
	req2.Header.Set("apikey", t.Key)
	req2.Header.Set("Authorization", "Bearer "+t.Key)
	return base.RoundTrip(req2)
}

// cloneRequest returns a clone of the provided *http.Request.
// The clone is a shallow copy of the struct and its Header map.
func cloneRequest(r *http.Request) *http.Request {
	r2 := new(http.Request)
	*r2 = *r
	r2.Header = make(http.Header, len(r.Header))
	for k, s := range r.Header {
		r2.Header[k] = append([]string(nil), s...)
	}
	return r2
}
