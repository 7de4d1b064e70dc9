package middleware

import (
	"bytes"
	"io"
	"net/http"
)

// recorder sits between a handler and the real ResponseWriter. Successful
// responses (status < 400) are written through as soon as the status is
// known. Failed responses are held back until the interceptor decides
// whether to keep them or replace them with a report.
type recorder struct {
	w http.ResponseWriter

	// base is the header set before the handler ran; header is the one the
	// handler writes to.
	base   http.Header
	header http.Header

	status      int
	wroteHeader bool
	committed   bool
	body        bytes.Buffer
}

func newRecorder(w http.ResponseWriter) *recorder {
	return &recorder{
		w:      w,
		base:   w.Header().Clone(),
		header: w.Header().Clone(),
	}
}

func (r *recorder) Header() http.Header {
	return r.header
}

func (r *recorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	// Informational responses other than 101 do not end the header phase.
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		copyHeader(r.w.Header(), r.header)
		r.w.WriteHeader(code)
		return
	}

	r.wroteHeader = true
	r.status = code
	if code < http.StatusBadRequest {
		r.commit()
	}
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	if r.committed {
		return r.w.Write(b)
	}
	return r.body.Write(b)
}

// Flush is forwarded only once the response is committed; held back bodies
// stay buffered.
func (r *recorder) Flush() {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	if !r.committed {
		return
	}
	_ = http.NewResponseController(r.w).Flush()
}

func (r *recorder) Unwrap() http.ResponseWriter {
	return r.w
}

// failed reports whether the handler produced a held back failure response.
func (r *recorder) failed() bool {
	return r.wroteHeader && !r.committed
}

func (r *recorder) commit() {
	copyHeader(r.w.Header(), r.header)
	r.w.WriteHeader(r.status)
	r.committed = true
}

// finish writes whatever the handler produced, unchanged.
func (r *recorder) finish() {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	if r.committed {
		return
	}
	r.commit()
	_, _ = r.w.Write(r.body.Bytes())
}

// replace discards the handler's response and writes body as plain text.
func (r *recorder) replace(status int, body string) {
	h := r.w.Header()
	copyHeader(h, r.base)
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Del("Content-Length")
	r.w.WriteHeader(status)
	r.committed = true
	_, _ = io.WriteString(r.w, body)
}

// copyHeader makes dst an exact copy of src.
func copyHeader(dst, src http.Header) {
	for k := range dst {
		if _, ok := src[k]; !ok {
			delete(dst, k)
		}
	}
	for k, v := range src {
		dst[k] = append([]string(nil), v...)
	}
}
