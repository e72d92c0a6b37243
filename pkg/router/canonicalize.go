package router

import (
	"errors"
	"strings"
)

// Path canonicalization errors.
var (
	ErrInvalidPath          = errors.New("invalid path")
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot      = errors.New("path escapes root via ..")
)

// Canonical is a normalized request path.
type Canonical struct {
	// Path always starts with "/" and has no empty, "." or ".." segments.
	Path string

	// Query is the query string without the leading "?".
	Query string

	// Changed reports whether Path differs from the input path.
	Changed bool
}

// String returns the path with its query string.
func (c Canonical) String() string {
	if c.Query == "" {
		return c.Path
	}
	return c.Path + "?" + c.Query
}

// CanonicalizePath normalizes a navigation path before it is resolved.
//
// Repeated slashes are collapsed and "." and ".." segments are resolved; a
// trailing slash is kept. Backslashes, NUL bytes, malformed percent escapes
// and ".." above the root are rejected.
func CanonicalizePath(input string) (Canonical, error) {
	if input == "" {
		return Canonical{Path: "/", Changed: true}, nil
	}

	path, query, _ := strings.Cut(input, "?")

	if strings.Contains(path, "\\") {
		return Canonical{}, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return Canonical{}, ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return Canonical{}, err
		}
	}

	original := path
	trailing := len(path) > 1 && strings.HasSuffix(path, "/")

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segments) == 0 {
				return Canonical{}, ErrPathEscapesRoot
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, seg)
		}
	}

	path = "/" + strings.Join(segments, "/")
	if trailing && len(segments) > 0 {
		path += "/"
	}

	return Canonical{Path: path, Query: query, Changed: path != original}, nil
}

// ValidateRedirect rejects redirect targets that are not local paths and
// returns the canonical form of the others.
func ValidateRedirect(target string) (string, error) {
	if strings.HasPrefix(target, "//") || !strings.HasPrefix(target, "/") {
		return "", ErrInvalidPath
	}
	c, err := CanonicalizePath(target)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
