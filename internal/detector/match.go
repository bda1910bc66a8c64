package detector

import (
	"net/http"
	"strings"

	"github.com/olegrjumin/techprint/internal/signatures"
)

// Result is the outcome of matching one pattern group
type Result struct {
	Matched bool
	Version string // empty when no capture group produced a value
}

// Match evaluates patterns against source in declaration order and stops at
// the first hit. Literals match case-insensitively; regular expressions see
// the original-case source so captured versions keep their casing.
// An empty source never matches.
func Match(source string, patterns []signatures.Pattern) Result {
	if source == "" || len(patterns) == 0 {
		return Result{}
	}

	var lower string
	for _, p := range patterns {
		switch p.Kind {
		case signatures.KindLiteral:
			if lower == "" {
				lower = strings.ToLower(source)
			}
			if strings.Contains(lower, p.Lower()) {
				return Result{Matched: true}
			}
		case signatures.KindRegex:
			if p.Regex == nil {
				continue
			}
			m := p.Regex.FindStringSubmatch(source)
			if m == nil {
				continue
			}
			res := Result{Matched: true}
			if p.Group > 0 && p.Group < len(m) {
				res.Version = strings.TrimSpace(m[p.Group])
			}
			return res
		}
	}

	return Result{}
}

// MatchHeaders evaluates every header pattern and reports a match if any of
// them hits. Absent or empty headers simply do not match.
func MatchHeaders(headers http.Header, patterns []signatures.HeaderPattern) Result {
	matched := false
	for _, hp := range patterns {
		value := headerValue(headers, hp.Name)
		if value == "" || hp.Pattern == nil {
			continue
		}
		if hp.Pattern.MatchString(value) {
			matched = true
		}
	}
	return Result{Matched: matched}
}

// headerValue looks up name case-insensitively and joins repeated values
func headerValue(headers http.Header, name string) string {
	if headers == nil {
		return ""
	}
	values := headers.Values(name)
	if len(values) == 0 {
		// Header maps built by hand may not use canonical keys
		for k, v := range headers {
			if strings.EqualFold(k, name) {
				values = v
				break
			}
		}
	}
	return strings.Join(values, ", ")
}
