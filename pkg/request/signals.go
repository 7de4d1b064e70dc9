// Package request exposes the parts of an inbound HTTP request that the
// classifier and the report formatter read.
package request

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Signals is a read-only view of an inbound request.
type Signals interface {
	// Header returns the values of the named header joined by ", " and
	// whether the header was sent at all. Names are case-insensitive.
	Header(name string) (string, bool)

	// RawQuery returns the query string without the leading '?'.
	RawQuery() string

	Path() string
	Method() string

	// URL returns the absolute request URL.
	URL() string

	// Params returns query parameters merged with any already parsed form body.
	Params() url.Values

	// RequestID returns the request ID, or "" when none is known.
	RequestID() string
}

type requestIDKey struct{}

// WithRequestID stores id in ctx so that FromHTTP can report it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request ID stored in ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromHTTP wraps r. The request body is never read.
func FromHTTP(r *http.Request) Signals {
	return httpSignals{r: r}
}

type httpSignals struct {
	r *http.Request
}

func (s httpSignals) Header(name string) (string, bool) {
	values := s.r.Header.Values(name)
	if len(values) == 0 {
		return "", false
	}
	return strings.Join(values, ", "), true
}

func (s httpSignals) RawQuery() string {
	return s.r.URL.RawQuery
}

func (s httpSignals) Path() string {
	return s.r.URL.Path
}

func (s httpSignals) Method() string {
	return s.r.Method
}

func (s httpSignals) URL() string {
	scheme := "http"
	if s.r.TLS != nil {
		scheme = "https"
	}
	host := s.r.Host
	if host == "" {
		host = s.r.URL.Host
	}
	return scheme + "://" + host + s.r.URL.RequestURI()
}

func (s httpSignals) Params() url.Values {
	params := s.r.URL.Query()
	for key, values := range s.r.PostForm {
		params[key] = append(params[key], values...)
	}
	return params
}

func (s httpSignals) RequestID() string {
	if id := RequestIDFrom(s.r.Context()); id != "" {
		return id
	}
	return s.r.Header.Get("X-Request-ID")
}

// Static is a Signals implementation backed by plain values.
type Static struct {
	Headers http.Header
	Query   string
	RawPath string
	Verb    string
	FullURL string
	Form    url.Values
	ID      string
}

func (s Static) Header(name string) (string, bool) {
	values := s.Headers.Values(name)
	if len(values) == 0 {
		return "", false
	}
	return strings.Join(values, ", "), true
}

func (s Static) RawQuery() string   { return s.Query }
func (s Static) Path() string       { return s.RawPath }
func (s Static) Method() string     { return s.Verb }
func (s Static) URL() string        { return s.FullURL }
func (s Static) Params() url.Values { return s.Form }
func (s Static) RequestID() string  { return s.ID }
