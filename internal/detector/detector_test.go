package detector

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegrjumin/techprint/internal/signatures"
)

func find(detections []Detection, name string) (Detection, int) {
	var found Detection
	count := 0
	for _, d := range detections {
		if d.Name == name {
			found = d
			count++
		}
	}
	return found, count
}

func TestEvaluateWordPressVersion(t *testing.T) {
	db := signatures.MustDefault()
	html := `<html><head><meta name="generator" content="WordPress 6.3"></head></html>`

	detections := Evaluate(db, Sources{HTML: html})

	wp, n := find(detections, "WordPress")
	require.Equal(t, 1, n)
	assert.Equal(t, "6.3", wp.Version)
	assert.Equal(t, "CMS", wp.Category)
	require.NotNil(t, wp.Risk)
	assert.Contains(t, *wp.Risk, "plugins")
}

func TestEvaluateHTMLOnlyLiteralsAnyCase(t *testing.T) {
	db := signatures.MustDefault()

	for _, entry := range db.Entries() {
		p := entry.Patterns
		if len(p.Headers) > 0 || len(p.Scripts) > 0 {
			continue
		}
		for _, pat := range p.HTML {
			if pat.Kind != signatures.KindLiteral {
				continue
			}
			html := fmt.Sprintf("<html><body>%s</body></html>", strings.ToUpper(pat.Literal))

			_, n := find(Evaluate(db, Sources{HTML: html}), entry.Name)
			assert.Equal(t, 1, n, "%s via %q", entry.Name, pat.Literal)
		}
	}
}

func TestEvaluateHeaderSignatures(t *testing.T) {
	db := signatures.MustDefault()

	h := http.Header{}
	h.Set("Server", "nginx/1.18")
	h.Set("X-Powered-By", "ASP.NET")

	detections := Evaluate(db, Sources{Headers: h})

	nginx, n := find(detections, "Nginx")
	require.Equal(t, 1, n)
	assert.Equal(t, UnknownVersion, nginx.Version)
	assert.Nil(t, nginx.Risk)

	_, n = find(detections, "ASP.NET")
	assert.Equal(t, 1, n)

	_, n = find(detections, "Apache")
	assert.Zero(t, n)
}

func TestEvaluateHeaderOnlyMatchesIndependently(t *testing.T) {
	db := signatures.MustDefault()

	h := http.Header{}
	h.Set("Content-Security-Policy", "script-src https://www.googletagmanager.com")

	gtm, n := find(Evaluate(db, Sources{HTML: "<html></html>", Headers: h}), "Google Tag Manager")
	require.Equal(t, 1, n)
	assert.Equal(t, UnknownVersion, gtm.Version)
}

func TestEvaluateScriptsCorpus(t *testing.T) {
	db := signatures.MustDefault()

	detections := Evaluate(db, Sources{Scripts: "window.Intercom=function(){}"})

	intercom, n := find(detections, "Intercom")
	require.Equal(t, 1, n)
	assert.Equal(t, "Customer Support", intercom.Category)
}

func TestEvaluateNoDuplicates(t *testing.T) {
	db := signatures.MustDefault()

	detections := Evaluate(db, Sources{
		HTML:    `<script src="https://widget.intercom.io/widget/x"></script>`,
		Scripts: "window.intercomSettings = {}",
	})

	_, n := find(detections, "Intercom")
	assert.Equal(t, 1, n)
}

func TestEvaluateCatalogOrder(t *testing.T) {
	db := signatures.MustDefault()

	h := http.Header{}
	h.Set("Server", "nginx")
	detections := Evaluate(db, Sources{HTML: "data-reactroot jquery-3.6.0.min.js", Headers: h})

	names := make([]string, 0, len(detections))
	for _, d := range detections {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"React", "Nginx", "jQuery"}, names)

	jq, _ := find(detections, "jQuery")
	assert.Equal(t, "3.6.0", jq.Version)
}

func TestEvaluateEmptySources(t *testing.T) {
	detections := Evaluate(signatures.MustDefault(), Sources{})

	assert.NotNil(t, detections)
	assert.Empty(t, detections)
}

func TestEvaluateEntryScriptsVersionWins(t *testing.T) {
	entry := signatures.Entry{
		Name:       "Widget",
		Category:   "Testing",
		Confidence: 10,
		Patterns: signatures.Patterns{
			HTML:    []signatures.Pattern{signatures.MustRegex(`widget-([\d.]+)`, 1)},
			Scripts: []signatures.Pattern{signatures.MustRegex(`Widget v([\d.]+)`, 1)},
		},
	}

	d, ok := EvaluateEntry(entry, Sources{HTML: "widget-1.0", Scripts: "Widget v2.0"})
	require.True(t, ok)
	assert.Equal(t, "2.0", d.Version)

	d, ok = EvaluateEntry(entry, Sources{HTML: "widget-1.0", Scripts: "nothing"})
	require.True(t, ok)
	assert.Equal(t, "1.0", d.Version)
}
