// Package detector matches signature patterns against the data gathered for
// one page: its markup, its response headers and the text of its scripts.
package detector

import (
	"net/http"

	"github.com/olegrjumin/techprint/internal/signatures"
)

// UnknownVersion is reported when no pattern captured a version
const UnknownVersion = "Unknown"

// Sources holds the three data sources signatures are matched against
type Sources struct {
	HTML    string
	Headers http.Header
	Scripts string
}

// Detection is a confirmed technology
type Detection struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Confidence int     `json:"confidence"`
	Version    string  `json:"version"`
	Risk       *string `json:"risk"`
}

// Evaluate runs every entry of db against src and returns one Detection per
// matched entry, in catalog order
func Evaluate(db *signatures.Database, src Sources) []Detection {
	entries := db.Entries()
	detections := make([]Detection, 0)

	for _, entry := range entries {
		if d, ok := EvaluateEntry(entry, src); ok {
			detections = append(detections, d)
		}
	}

	return detections
}

// EvaluateEntry matches a single entry. The html, headers and scripts groups
// are checked independently; a version captured from scripts replaces one
// captured from html.
func EvaluateEntry(entry signatures.Entry, src Sources) (Detection, bool) {
	matched := false
	version := UnknownVersion

	apply := func(r Result) {
		if !r.Matched {
			return
		}
		matched = true
		if r.Version != "" {
			version = r.Version
		}
	}

	if len(entry.Patterns.HTML) > 0 {
		apply(Match(src.HTML, entry.Patterns.HTML))
	}
	if len(entry.Patterns.Headers) > 0 {
		apply(MatchHeaders(src.Headers, entry.Patterns.Headers))
	}
	if len(entry.Patterns.Scripts) > 0 {
		apply(Match(src.Scripts, entry.Patterns.Scripts))
	}

	if !matched {
		return Detection{}, false
	}

	d := Detection{
		Name:       entry.Name,
		Category:   entry.Category,
		Confidence: entry.Confidence,
		Version:    version,
	}
	if entry.Risk != "" {
		risk := entry.Risk
		d.Risk = &risk
	}
	return d, true
}
