// Package signatures holds the compiled-in technology catalog.
//
// The catalog is declared in signatures.yaml, embedded into the binary and
// decoded once per process. Entries keep their declaration order, which is
// also the order detections are reported in.
package signatures

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed signatures.yaml
var catalog []byte

// Kind tells a literal pattern from a regular expression
type Kind int

const (
	// KindLiteral matches a case-insensitive substring
	KindLiteral Kind = iota
	// KindRegex matches a regular expression against the original-case source
	KindRegex
)

// Pattern is one detection pattern. Exactly one of Literal or Regex is set,
// as reported by Kind.
type Pattern struct {
	Kind    Kind
	Literal string
	Regex   *regexp.Regexp
	// Group is the capture group holding the version, 0 when the
	// expression captures nothing.
	Group int

	lower string
}

// Lower returns the lower-cased literal used for case-insensitive matching
func (p Pattern) Lower() string {
	return p.lower
}

// HeaderPattern matches the value of one response header
type HeaderPattern struct {
	Name    string // lower-cased header name
	Pattern *regexp.Regexp
}

// Patterns groups the patterns of one entry by data source
type Patterns struct {
	HTML    []Pattern
	Headers []HeaderPattern
	Scripts []Pattern
}

// Entry describes how to detect one technology
type Entry struct {
	Name       string
	Category   string
	Confidence int
	Patterns   Patterns
	Risk       string // empty when there is no advisory
}

// Database is an immutable, ordered set of entries
type Database struct {
	entries []Entry
}

// Entries returns the entries in declaration order.
// The returned slice is a copy; the Database itself never changes.
func (db *Database) Entries() []Entry {
	out := make([]Entry, len(db.entries))
	copy(out, db.entries)
	return out
}

// Len returns the number of entries
func (db *Database) Len() int {
	return len(db.entries)
}

// Lookup returns the entry with the given name
func (db *Database) Lookup(name string) (Entry, bool) {
	for _, e := range db.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

var (
	defaultDB   *Database
	defaultErr  error
	defaultOnce sync.Once
)

// Default returns the embedded catalog, decoding it on first use
func Default() (*Database, error) {
	defaultOnce.Do(func() {
		defaultDB, defaultErr = Parse(catalog)
	})
	return defaultDB, defaultErr
}

// MustDefault is like Default but panics if the embedded catalog is invalid
func MustDefault() *Database {
	db, err := Default()
	if err != nil {
		panic(err)
	}
	return db
}

type rawEntry struct {
	Name       string      `yaml:"name"`
	Category   string      `yaml:"category"`
	Confidence *int        `yaml:"confidence"`
	Patterns   rawPatterns `yaml:"patterns"`
	Risk       string      `yaml:"risk"`
}

type rawPatterns struct {
	HTML    []rawPattern `yaml:"html"`
	Headers []rawHeader  `yaml:"headers"`
	Scripts []rawPattern `yaml:"scripts"`
}

type rawHeader struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

type rawPattern struct {
	Literal *string `yaml:"literal"`
	Regex   *string `yaml:"regex"`
	Group   *int    `yaml:"group"`
}

// UnmarshalYAML accepts a bare string as shorthand for {literal: ...}
func (p *rawPattern) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		p.Literal = &s
		return nil
	}

	type plain rawPattern
	return node.Decode((*plain)(p))
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Database, error) {
	var raw []rawEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode signatures: %w", err)
	}

	db := &Database{entries: make([]Entry, 0, len(raw))}
	seen := make(map[string]bool, len(raw))

	for i, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, fmt.Errorf("signature #%d: missing name", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("signature %q: duplicate name", name)
		}
		seen[name] = true

		entry, err := buildEntry(name, r)
		if err != nil {
			return nil, fmt.Errorf("signature %q: %w", name, err)
		}
		db.entries = append(db.entries, entry)
	}

	return db, nil
}

func buildEntry(name string, r rawEntry) (Entry, error) {
	if strings.TrimSpace(r.Category) == "" {
		return Entry{}, fmt.Errorf("missing category")
	}
	if r.Confidence == nil {
		return Entry{}, fmt.Errorf("missing confidence")
	}
	if *r.Confidence < 0 || *r.Confidence > 100 {
		return Entry{}, fmt.Errorf("confidence %d out of range 0-100", *r.Confidence)
	}

	entry := Entry{
		Name:       name,
		Category:   r.Category,
		Confidence: *r.Confidence,
		Risk:       strings.TrimSpace(r.Risk),
	}

	var err error
	if entry.Patterns.HTML, err = buildPatterns(r.Patterns.HTML); err != nil {
		return Entry{}, fmt.Errorf("html: %w", err)
	}
	if entry.Patterns.Scripts, err = buildPatterns(r.Patterns.Scripts); err != nil {
		return Entry{}, fmt.Errorf("scripts: %w", err)
	}
	for _, h := range r.Patterns.Headers {
		headerName := strings.ToLower(strings.TrimSpace(h.Name))
		if headerName == "" {
			return Entry{}, fmt.Errorf("headers: missing header name")
		}
		re, err := compile(h.Pattern)
		if err != nil {
			return Entry{}, fmt.Errorf("headers: %s: %w", headerName, err)
		}
		entry.Patterns.Headers = append(entry.Patterns.Headers, HeaderPattern{Name: headerName, Pattern: re})
	}

	if len(entry.Patterns.HTML)+len(entry.Patterns.Headers)+len(entry.Patterns.Scripts) == 0 {
		return Entry{}, fmt.Errorf("no patterns")
	}

	return entry, nil
}

func buildPatterns(raw []rawPattern) ([]Pattern, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	patterns := make([]Pattern, 0, len(raw))
	for i, r := range raw {
		p, err := buildPattern(r)
		if err != nil {
			return nil, fmt.Errorf("pattern #%d: %w", i+1, err)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func buildPattern(r rawPattern) (Pattern, error) {
	switch {
	case r.Literal != nil && r.Regex != nil:
		return Pattern{}, fmt.Errorf("both literal and regex set")
	case r.Literal != nil:
		if *r.Literal == "" {
			return Pattern{}, fmt.Errorf("empty literal")
		}
		if r.Group != nil {
			return Pattern{}, fmt.Errorf("group set on a literal")
		}
		return NewLiteral(*r.Literal), nil
	case r.Regex != nil:
		re, err := compile(*r.Regex)
		if err != nil {
			return Pattern{}, err
		}
		group := 0
		if re.NumSubexp() > 0 {
			group = 1
		}
		if r.Group != nil {
			group = *r.Group
		}
		if group < 0 || group > re.NumSubexp() {
			return Pattern{}, fmt.Errorf("group %d out of range for %q", group, re.String())
		}
		return Pattern{Kind: KindRegex, Regex: re, Group: group}, nil
	default:
		return Pattern{}, fmt.Errorf("neither literal nor regex set")
	}
}

// NewLiteral returns a case-insensitive substring pattern
func NewLiteral(s string) Pattern {
	return Pattern{Kind: KindLiteral, Literal: s, lower: strings.ToLower(s)}
}

// NewRegex compiles expr into a pattern capturing group as the version.
// A group of 0 captures nothing.
func NewRegex(expr string, group int) (Pattern, error) {
	re, err := compile(expr)
	if err != nil {
		return Pattern{}, err
	}
	if group < 0 || group > re.NumSubexp() {
		return Pattern{}, fmt.Errorf("group %d out of range for %q", group, expr)
	}
	return Pattern{Kind: KindRegex, Regex: re, Group: group}, nil
}

// MustRegex is like NewRegex but panics on error
func MustRegex(expr string, group int) Pattern {
	p, err := NewRegex(expr, group)
	if err != nil {
		panic(err)
	}
	return p
}
