package router

import (
	"net/url"
	"sort"
	"strings"
)

// NavigateOptions configures how a redirect target is built.
type NavigateOptions struct {
	// Query is the raw query string of the current request, carried over to
	// the target unless the target has its own.
	Query string

	// Params are query parameters added to the target.
	Params map[string]string
}

// NavigateOption is a functional option for RedirectURL.
type NavigateOption func(*NavigateOptions)

// WithQuery preserves the raw query string of the current request.
func WithQuery(rawQuery string) NavigateOption {
	return func(o *NavigateOptions) {
		o.Query = rawQuery
	}
}

// WithParams adds query parameters to the target.
func WithParams(params map[string]string) NavigateOption {
	return func(o *NavigateOptions) {
		o.Params = params
	}
}

// RedirectURL builds the URL for a redirect to target.
func RedirectURL(target string, opts ...NavigateOption) string {
	var o NavigateOptions
	for _, opt := range opts {
		opt(&o)
	}

	path, query, hasQuery := strings.Cut(target, "?")
	if !hasQuery {
		query = o.Query
	}
	if len(o.Params) == 0 {
		if query == "" {
			return path
		}
		return path + "?" + query
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		values = url.Values{}
	}
	keys := make([]string, 0, len(o.Params))
	for k := range o.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		values.Set(k, o.Params[k])
	}
	return path + "?" + values.Encode()
}
