package scripts

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSources(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "double and single quotes",
			html: `<script src="/a.js"></script><script src='/b.js'></script>`,
			want: []string{"/a.js", "/b.js"},
		},
		{
			name: "case-insensitive tag and attribute",
			html: `<SCRIPT type="text/javascript" SRC="https://cdn.example.com/x.js"></SCRIPT>`,
			want: []string{"https://cdn.example.com/x.js"},
		},
		{
			name: "inline scripts ignored",
			html: `<script>var s = '<script src="/fake.js"></script>';</script><script src="/real.js"></script>`,
			want: []string{"/real.js"},
		},
		{
			name: "document.write markup ignored",
			html: `<script>document.write('<script src="/written.js"><\/script>');</script><script src="/real.js"></script>`,
			want: []string{"/real.js"},
		},
		{
			name: "commented-out tags ignored",
			html: `<!-- <script src="/old.js"></script> --><script src="/real.js"></script>`,
			want: []string{"/real.js"},
		},
		{
			name: "duplicates collapse in first-seen order",
			html: `<script src="/b.js"></script><script src="/a.js"></script><script src="/b.js"></script>`,
			want: []string{"/b.js", "/a.js"},
		},
		{
			name: "empty src skipped",
			html: `<script src=""></script><script src="  "></script>`,
			want: []string{},
		},
		{
			name: "other tags ignored",
			html: `<img src="/logo.png"><link href="/s.css"><iframe src="/frame"></iframe>`,
			want: []string{},
		},
		{
			name: "no html",
			html: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSources(tt.html))
		})
	}
}

func TestResolve(t *testing.T) {
	base := "https://www.example.com/blog/post/"

	got := Resolve(base, []string{
		"/static/app.js",
		"vendor.js",
		"//cdn.example.net/lib.js",
		"http://other.example.org/x.js",
		"javascript:void(0)",
		"data:text/javascript,alert(1)",
		"http://[::1",
		"../up.js",
	}, 0)

	assert.Equal(t, []string{
		"https://www.example.com/static/app.js",
		"https://www.example.com/blog/post/vendor.js",
		"https://cdn.example.net/lib.js",
		"http://other.example.org/x.js",
		"https://www.example.com/blog/up.js",
	}, got)
}

func TestResolveDeduplicatesResolvedURLs(t *testing.T) {
	got := Resolve("https://example.com/", []string{"/a.js", "a.js", "https://example.com/a.js"}, 0)
	assert.Equal(t, []string{"https://example.com/a.js"}, got)
}

func TestResolveLimit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, `<script src="/s%d.js"></script>`, i)
	}

	got := ExtractAndResolve(b.String(), "https://example.com/", DefaultLimit)

	assert.Len(t, got, DefaultLimit)
	assert.Equal(t, "https://example.com/s0.js", got[0])
	assert.Equal(t, "https://example.com/s9.js", got[9])
}

func TestResolveLimitCountsOnlyKeptURLs(t *testing.T) {
	got := Resolve("https://example.com/", []string{"javascript:x", "/a.js", "/b.js"}, 2)
	assert.Equal(t, []string{"https://example.com/a.js", "https://example.com/b.js"}, got)
}

func TestResolveBadBase(t *testing.T) {
	assert.Empty(t, Resolve("http://[::1", []string{"/a.js"}, 0))
}
