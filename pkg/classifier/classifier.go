// Package classifier decides whether a failed request should receive a
// plain-text error report instead of the normal error response.
//
// The decision is a priority-ordered rule chain; the first rule that
// matches wins:
//
//  1. force_standard_error=1 in the query string: never intercept
//  2. force_plain_error=1 in the query string: intercept
//  3. a configured trigger header with value 1, true or yes: intercept
//  4. no Accept header: Config.InterceptWithoutAccept
//  5. Accept contains text/plain: intercept
//  6. X-Requested-With is XMLHttpRequest: intercept
//  7. otherwise intercept unless Accept contains text/html
package classifier

import (
	"net/url"
	"strings"

	"github.com/cecil-the-coder/plain-errors-kit/pkg/config"
	"github.com/cecil-the-coder/plain-errors-kit/pkg/request"
)

const (
	ForceStandardParam = "force_standard_error"
	ForcePlainParam    = "force_plain_error"
)

// Rule identifies the rule that produced a Decision.
type Rule string

const (
	RuleForceStandard  Rule = "force_standard_error"
	RuleForcePlain     Rule = "force_plain_error"
	RuleTriggerHeader  Rule = "trigger_header"
	RuleNoAccept       Rule = "no_accept_header"
	RuleAcceptPlain    Rule = "accept_text_plain"
	RuleXMLHTTPRequest Rule = "xml_http_request"
	RuleAcceptHTML     Rule = "accept_html"
)

// Decision is the result of classifying a request.
type Decision struct {
	Intercept bool
	Rule      Rule
	// Detail names the matched header or the Accept value, for logging.
	Detail string
}

// Classify reports whether the request should get a plain-text report.
func Classify(s request.Signals, cfg config.Config) bool {
	return Explain(s, cfg).Intercept
}

// Explain is Classify with the matching rule attached.
func Explain(s request.Signals, cfg config.Config) Decision {
	query := s.RawQuery()

	if flagSet(query, ForceStandardParam) {
		return Decision{Intercept: false, Rule: RuleForceStandard}
	}
	if flagSet(query, ForcePlainParam) {
		return Decision{Intercept: true, Rule: RuleForcePlain}
	}

	for _, name := range cfg.TriggerHeaders {
		if value, ok := s.Header(name); ok && truthy(value) {
			return Decision{Intercept: true, Rule: RuleTriggerHeader, Detail: name}
		}
	}

	accept, ok := s.Header("Accept")
	if !ok {
		return Decision{Intercept: cfg.InterceptWithoutAccept, Rule: RuleNoAccept}
	}
	accept = strings.ToLower(accept)

	if strings.Contains(accept, "text/plain") {
		return Decision{Intercept: true, Rule: RuleAcceptPlain, Detail: accept}
	}

	if xrw, _ := s.Header("X-Requested-With"); xrw == "XMLHttpRequest" {
		return Decision{Intercept: true, Rule: RuleXMLHTTPRequest}
	}

	return Decision{
		Intercept: !strings.Contains(accept, "text/html"),
		Rule:      RuleAcceptHTML,
		Detail:    accept,
	}
}

// flagSet reports whether rawQuery has a key=1 pair. Pairs are separated by
// '&' or ';', and a pair that fails to unescape is compared as written.
func flagSet(rawQuery, key string) bool {
	pairs := strings.FieldsFunc(rawQuery, func(r rune) bool { return r == '&' || r == ';' })
	for _, pair := range pairs {
		k, v, _ := strings.Cut(pair, "=")
		if unescape(k) == key && unescape(v) == "1" {
			return true
		}
	}
	return false
}

func unescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
