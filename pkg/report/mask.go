package report

import (
	"net/url"
	"regexp"
	"strings"
)

const masked = "***MASKED***"

// Masker hides credentials in the request information section.
type Masker struct {
	// sensitiveParams holds lower-cased parameter names whose values are hidden
	sensitiveParams map[string]bool

	patterns []maskPattern
}

type maskPattern struct {
	pattern     *regexp.Regexp
	replacement string
}

// DefaultMasker masks the usual credential parameter names plus bearer
// tokens and AWS access keys appearing anywhere in a value.
func DefaultMasker() *Masker {
	m := &Masker{
		sensitiveParams: map[string]bool{
			"password":      true,
			"passwd":        true,
			"secret":        true,
			"token":         true,
			"access_token":  true,
			"refresh_token": true,
			"api_key":       true,
			"apikey":        true,
			"api-key":       true,
			"client_secret": true,
			"authorization": true,
		},
	}

	m.AddPattern(regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-_\.]+`), "Bearer "+masked)
	m.AddPattern(regexp.MustCompile(`AKIA[0-9A-Z]{16}`), "***MASKED_AWS_KEY***")

	return m
}

// AddPattern adds a value masking pattern.
func (m *Masker) AddPattern(pattern *regexp.Regexp, replacement string) {
	m.patterns = append(m.patterns, maskPattern{pattern: pattern, replacement: replacement})
}

// AddSensitiveParam marks a parameter name as sensitive.
func (m *Masker) AddSensitiveParam(name string) {
	m.sensitiveParams[strings.ToLower(name)] = true
}

// IsSensitive reports whether values of the named parameter are hidden.
func (m *Masker) IsSensitive(name string) bool {
	return m.sensitiveParams[strings.ToLower(name)]
}

// MaskValue masks the value of parameter name.
func (m *Masker) MaskValue(name, value string) string {
	if m.IsSensitive(name) {
		return masked
	}
	for _, p := range m.patterns {
		value = p.pattern.ReplaceAllString(value, p.replacement)
	}
	return value
}

// MaskURL hides the userinfo password and sensitive query values of raw.
// Text that does not parse as a URL is returned unchanged.
func (m *Masker) MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
	}
	if u.RawQuery != "" {
		parts := strings.Split(u.RawQuery, "&")
		for i, part := range parts {
			key, _, ok := strings.Cut(part, "=")
			if !ok {
				continue
			}
			name, err := url.QueryUnescape(key)
			if err != nil {
				name = key
			}
			if m.IsSensitive(name) {
				parts[i] = key + "=" + masked
			}
		}
		u.RawQuery = strings.Join(parts, "&")
	}
	return u.String()
}
