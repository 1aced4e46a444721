package domain

import (
	"net/http"
	"strings"
)

// FetchResult is the transient outcome of fetching one URL. Either Body holds
// the response text or Err records why the URL permanently failed. It is never
// persisted.
type FetchResult struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

// OK reports whether the fetch produced a usable 200 response.
func (r FetchResult) OK() bool {
	return r.Err == nil && r.StatusCode == http.StatusOK
}

// NormalizeQuery produces the dedup/resume key for a free-text wine name.
func NormalizeQuery(query string) string {
	return strings.TrimSpace(query)
}
