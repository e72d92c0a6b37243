package routetree

import "strings"

// segmentKind distinguishes literal text from a {name} placeholder.
type segmentKind uint8

const (
	segmentLiteral segmentKind = iota
	segmentParam
)

// segment is one token of a tokenized path template.
type segment struct {
	kind segmentKind

	// text is the literal text or the parameter name (without braces)
	text string
}

// Template is a path template for one language, tokenized once into literal
// and parameter segments.
//
// Leading and trailing slashes are not significant: "/post/{id}", "post/{id}"
// and "post/{id}/" all produce the same template. Each {name} placeholder
// captures one or more characters other than '/'.
type Template struct {
	raw      string
	segments []segment
	params   []string
}

// ParseTemplate tokenizes a raw path template.
// A '{' without a matching '}' (or an empty "{}") is kept as literal text.
func ParseTemplate(raw string) Template {
	raw = strings.Trim(raw, "/")
	t := Template{raw: raw}

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{kind: segmentLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(raw); {
		if raw[i] == '{' {
			if end := strings.IndexByte(raw[i+1:], '}'); end > 0 {
				flush()
				name := raw[i+1 : i+1+end]
				t.segments = append(t.segments, segment{kind: segmentParam, text: name})
				t.params = append(t.params, name)
				i += end + 2
				continue
			}
		}
		lit.WriteByte(raw[i])
		i++
	}
	flush()

	return t
}

// String returns the normalized template text.
func (t Template) String() string {
	return t.raw
}

// IsEmpty reports whether the template matches only the empty path.
func (t Template) IsEmpty() bool {
	return t.raw == ""
}

// HasParams reports whether the template contains at least one placeholder.
func (t Template) HasParams() bool {
	return len(t.params) > 0
}

// Params returns the placeholder names in order of appearance.
func (t Template) Params() []string {
	out := make([]string, len(t.params))
	copy(out, t.params)
	return out
}

// Match matches the whole uri against the template.
// Captured values are returned keyed by placeholder name.
func (t Template) Match(uri string) (map[string]string, bool) {
	captures := make([]string, 0, len(t.params))
	if _, ok := t.matchFrom(uri, 0, 0, &captures, false); !ok {
		return nil, false
	}
	return t.bind(captures), true
}

// MatchPrefix matches the template against a prefix of uri that must be
// followed by '/'. It returns the remainder after that slash and the values
// captured from the prefix.
func (t Template) MatchPrefix(uri string) (rest string, params map[string]string, ok bool) {
	captures := make([]string, 0, len(t.params))
	end, ok := t.matchFrom(uri, 0, 0, &captures, true)
	if !ok {
		return "", nil, false
	}
	return uri[end+1:], t.bind(captures), true
}

// matchFrom walks the segments starting at segment idx and byte offset pos.
// Placeholders are greedy and backtrack, mirroring a "([^/]+)" capture.
// In prefix mode the match must stop right before a '/'; the returned offset
// is the position of that slash.
func (t Template) matchFrom(s string, idx, pos int, captures *[]string, prefix bool) (int, bool) {
	if idx == len(t.segments) {
		if prefix {
			return pos, pos < len(s) && s[pos] == '/'
		}
		return pos, pos == len(s)
	}

	seg := t.segments[idx]
	if seg.kind == segmentLiteral {
		if !strings.HasPrefix(s[pos:], seg.text) {
			return 0, false
		}
		return t.matchFrom(s, idx+1, pos+len(seg.text), captures, prefix)
	}

	limit := len(s)
	if slash := strings.IndexByte(s[pos:], '/'); slash >= 0 {
		limit = pos + slash
	}
	for end := limit; end > pos; end-- {
		*captures = append(*captures, s[pos:end])
		if n, ok := t.matchFrom(s, idx+1, end, captures, prefix); ok {
			return n, true
		}
		*captures = (*captures)[:len(*captures)-1]
	}
	return 0, false
}

func (t Template) bind(captures []string) map[string]string {
	params := make(map[string]string, len(captures))
	for i, name := range t.params {
		if i < len(captures) {
			params[name] = captures[i]
		}
	}
	return params
}
