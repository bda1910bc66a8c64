// Package scripts finds the external scripts a page references and resolves
// them to absolute URLs.
package scripts

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// DefaultLimit caps how many scripts are fetched for one page
const DefaultLimit = 10

// ExtractSources returns the src values of <script> tags in document order,
// without duplicates. Tag and attribute names match case-insensitively and
// both quoting styles are accepted.
func ExtractSources(page string) []string {
	z := html.NewTokenizer(strings.NewReader(page))
	set := newOrderedSet()

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a malformed tail; whatever was read so far stands
			return set.items
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "script" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "src" {
					if src := strings.TrimSpace(string(val)); src != "" {
						set.add(src)
					}
				}
				if !more {
					break
				}
			}
		}
	}
}

// Resolve turns raw sources into absolute http(s) URLs against base and keeps
// at most limit of them, in input order. Sources that fail to parse, resolve
// to another scheme, or repeat an earlier URL are dropped. A limit of 0 or
// less keeps everything.
func Resolve(base string, sources []string, limit int) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return []string{}
	}

	set := newOrderedSet()
	for _, src := range sources {
		if limit > 0 && len(set.items) >= limit {
			break
		}
		ref, err := url.Parse(src)
		if err != nil {
			continue
		}
		abs := baseURL.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			continue
		}
		if abs.Host == "" {
			continue
		}
		set.add(abs.String())
	}

	return set.items
}

// ExtractAndResolve is ExtractSources followed by Resolve
func ExtractAndResolve(page, base string, limit int) []string {
	return Resolve(base, ExtractSources(page), limit)
}

// orderedSet keeps first-seen order alongside a membership index
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{items: []string{}, seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
