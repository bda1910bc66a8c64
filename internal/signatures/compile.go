package signatures

import (
	"regexp"
	"sync"
)

// regexCache holds compiled expressions keyed by source so an expression
// shared by several entries (".*" on many headers) is compiled once.
var regexCache sync.Map

func compile(expr string) (*regexp.Regexp, error) {
	if cached, ok := regexCache.Load(expr); ok {
		return cached.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	actual, _ := regexCache.LoadOrStore(expr, re)
	return actual.(*regexp.Regexp), nil
}
