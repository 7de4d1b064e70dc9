package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cecil-the-coder/plain-errors-kit/pkg/classifier"
	"github.com/cecil-the-coder/plain-errors-kit/pkg/config"
	"github.com/cecil-the-coder/plain-errors-kit/pkg/report"
	"github.com/cecil-the-coder/plain-errors-kit/pkg/request"
	"github.com/cecil-the-coder/plain-errors-kit/pkg/trace"
)

// Interceptor replaces failed responses with a plain-text report when the
// client looks like a machine rather than a browser.
type Interceptor struct {
	cfg       config.Config
	logger    logrus.FieldLogger
	cleaner   trace.Cleaner
	formatter *report.Formatter
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithLogger sets the logger used for verbose diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(i *Interceptor) { i.logger = logger }
}

// WithCleaner sets the backtrace cleaner, replacing the one built from
// cfg.Backtrace.
func WithCleaner(c trace.Cleaner) Option {
	return func(i *Interceptor) { i.cleaner = c }
}

// NewInterceptor builds an Interceptor. cfg is copied; later changes to it
// have no effect.
func NewInterceptor(cfg config.Config, opts ...Option) *Interceptor {
	i := &Interceptor{cfg: cfg.Clone()}
	for _, opt := range opts {
		opt(i)
	}
	if i.logger == nil {
		i.logger = logrus.New()
	}
	i.logger = i.logger.WithField("component", "plain_errors")
	if i.cleaner == nil {
		i.cleaner = report.CleanerFor(i.cfg)
	}
	i.formatter = report.NewFormatter(i.cfg, i.cleaner)
	return i
}

// PlainErrors returns the interceptor as middleware.
func PlainErrors(cfg config.Config, opts ...Option) func(http.Handler) http.Handler {
	return NewInterceptor(cfg, opts...).Middleware
}

// Middleware wraps next. When interception is disabled next is returned as is.
func (i *Interceptor) Middleware(next http.Handler) http.Handler {
	if !i.cfg.Enabled {
		i.logf("disabled, passing requests through")
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i.serve(next, w, r)
	})
}

// outcome is the result of running the downstream handler: completed or
// panicked.
type outcome interface {
	outcome()
}

type completed struct{}

type panicked struct {
	value    any
	captured *trace.CapturedError
}

func (completed) outcome() {}
func (panicked) outcome()  {}

func (i *Interceptor) invoke(next http.Handler, w http.ResponseWriter, r *http.Request) (out outcome) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		if v == http.ErrAbortHandler {
			panic(v)
		}
		out = panicked{value: v, captured: trace.FromPanic(v)}
	}()
	next.ServeHTTP(w, r)
	return completed{}
}

func (i *Interceptor) serve(next http.Handler, w http.ResponseWriter, r *http.Request) {
	r = r.WithContext(WithErrorSlot(r.Context()))
	rec := newRecorder(w)

	switch out := i.invoke(next, rec, r).(type) {
	case panicked:
		i.logf("caught panic %s: %s", out.captured.Type, out.captured.Message)
		if rec.committed {
			i.logf("response already sent with status %d, re-raising", rec.status)
			panic(out.value)
		}
		if !i.decide(r) {
			panic(out.value)
		}
		i.emit(rec, http.StatusInternalServerError, i.formatter.Format(out.captured, request.FromHTTP(r)))

	case completed:
		if !rec.failed() {
			rec.finish()
			return
		}
		i.inspect(rec, r)
	}
}

// inspect handles a held back response with status >= 400.
func (i *Interceptor) inspect(rec *recorder, r *http.Request) {
	if captured := CapturedError(r.Context()); captured != nil {
		i.logf("found captured error %s for status %d", captured.Type, rec.status)
		if !i.decide(r) {
			rec.finish()
			return
		}
		i.emit(rec, http.StatusInternalServerError, i.formatter.Format(captured, request.FromHTTP(r)))
		return
	}

	if !i.cfg.InterceptsClientError(rec.status) {
		i.logf("no captured error for status %d, passing through", rec.status)
		rec.finish()
		return
	}
	if !i.decide(r) {
		rec.finish()
		return
	}
	i.emit(rec, rec.status, report.NotFound(rec.status, r.URL.Path))
}

func (i *Interceptor) decide(r *http.Request) bool {
	sig := request.FromHTTP(r)
	if i.cfg.Verbose {
		accept, _ := sig.Header("Accept")
		i.logf("checking trigger headers %v", i.cfg.TriggerHeaders)
		i.logf("accept header: %q", accept)
	}

	d := classifier.Explain(sig, i.cfg)
	if d.Intercept {
		i.logf("intercepting (rule %s %s)", d.Rule, d.Detail)
	} else {
		i.logf("not intercepting (rule %s %s)", d.Rule, d.Detail)
	}
	return d.Intercept
}

func (i *Interceptor) emit(rec *recorder, status int, body string) {
	i.logf("returning plain-text report with status %d", status)
	rec.replace(status, body)
}

func (i *Interceptor) logf(format string, args ...any) {
	if !i.cfg.Verbose {
		return
	}
	i.logger.Infof("PlainErrors: "+format, args...)
}
