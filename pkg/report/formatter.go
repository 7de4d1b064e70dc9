// Package report renders the plain-text diagnostic report returned to
// machine clients in place of the default error page.
package report

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/cecil-the-coder/plain-errors-kit/pkg/config"
	"github.com/cecil-the-coder/plain-errors-kit/pkg/request"
	"github.com/cecil-the-coder/plain-errors-kit/pkg/trace"
)

// Formatter builds reports for one configuration. It is safe for
// concurrent use.
type Formatter struct {
	cfg     config.Config
	cleaner trace.Cleaner
	masker  *Masker
}

// NewFormatter returns a Formatter. cleaner may be nil, in which case frame
// paths are only abbreviated against cfg.ApplicationRoot.
func NewFormatter(cfg config.Config, cleaner trace.Cleaner) *Formatter {
	return &Formatter{
		cfg:     cfg.Clone(),
		cleaner: cleaner,
		masker:  DefaultMasker(),
	}
}

type section struct {
	name  string
	build func() []string
}

// Format renders the full report for err. sig may be nil when no request
// is associated with the failure.
func (f *Formatter) Format(err *trace.CapturedError, sig request.Signals) string {
	if err == nil {
		err = &trace.CapturedError{Type: "error", Message: "unknown error"}
	}

	sections := []section{
		{"Error header", func() []string { return f.header(err) }},
		{"Stack trace", func() []string { return f.stackTrace(err) }},
	}
	if f.cfg.ShowCodeSnippets {
		sections = append(sections, section{"Code snippet", func() []string { return f.snippet(err) }})
	}
	if f.cfg.ShowRequestInfo && sig != nil {
		sections = append(sections, section{"Request info", func() []string { return f.requestInfo(sig) }})
	}
	if f.cfg.ShowVariables {
		sections = append(sections, section{"Variables", variables})
	}

	rendered := make([]string, 0, len(sections))
	for _, s := range sections {
		lines := safeBuild(s)
		if len(lines) == 0 {
			continue
		}
		rendered = append(rendered, strings.Join(lines, "\n"))
	}
	return strings.Join(rendered, "\n\n") + "\n"
}

// NotFound renders the minimal report used for failed responses that carry
// no captured error.
func NotFound(status int, path string) string {
	text := http.StatusText(status)
	if text == "" {
		text = "Error"
	}
	return strconv.Itoa(status) + " " + text + ": " + path + "\n"
}

func safeBuild(s section) (lines []string) {
	defer func() {
		if r := recover(); r != nil {
			lines = []string{s.name + " unavailable"}
		}
	}()
	return s.build()
}

func (f *Formatter) header(err *trace.CapturedError) []string {
	return []string{"ERROR", err.Type + ": " + err.Message}
}

func (f *Formatter) stackTrace(err *trace.CapturedError) []string {
	return append([]string{"TRACE"}, FormatStackTrace(err.Frames, f.cfg, f.cleaner)...)
}

func (f *Formatter) snippet(err *trace.CapturedError) []string {
	if len(err.Frames) == 0 {
		return nil
	}
	first := trace.ParseFrame(err.Frames[0].Raw)
	if !first.HasLocation() {
		return nil
	}

	location := fmt.Sprintf("%s:%d", Abbreviate(first.File, f.cfg.ApplicationRoot), first.Line)
	lines := ExtractSnippet(first.File, first.Line, f.cfg.CodeLinesContext)
	if len(lines) == 0 {
		lines = []string{"Code snippet unavailable"}
	}
	return append([]string{location}, lines...)
}

func (f *Formatter) requestInfo(sig request.Signals) []string {
	lines := []string{
		"REQUEST INFO:",
		"Method: " + sig.Method(),
		"URL: " + f.masker.MaskURL(sig.URL()),
	}
	if id := sig.RequestID(); id != "" {
		lines = append(lines, "Request ID: "+id)
	}
	if params := f.params(sig); params != "" {
		lines = append(lines, "Params: "+params)
	}
	return lines
}

func (f *Formatter) params(sig request.Signals) string {
	values := sig.Params()
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		vs := values[k]
		masked := make([]string, len(vs))
		for i, v := range vs {
			masked[i] = strconv.Quote(f.masker.MaskValue(k, v))
		}
		val := strings.Join(masked, ", ")
		if len(vs) != 1 {
			val = "[" + val + "]"
		}
		pairs = append(pairs, strconv.Quote(k)+" => "+val)
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

func variables() []string {
	return []string{"VARIABLES:", "Variable inspection is not available"}
}
