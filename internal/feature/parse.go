package feature

import "strings"

// ParsedURL is a read-only view of the components of a raw URL string.
// Absent components are empty strings.
type ParsedURL struct {
	// Scheme is the lower-cased scheme without the trailing colon.
	Scheme string

	// Hostname is the lower-cased authority: everything between "//" and
	// the first '/', '?' or '#'. Userinfo and port are not stripped.
	Hostname string

	// Path runs from the first '/' after the authority up to '?' or '#'.
	// Without an authority it is the remainder of the URL up to '?' or '#'.
	Path string

	// Query is the text between '?' and '#' (or the end of the string).
	Query string

	// Fragment is the text after '#'. No feature reads it.
	Fragment string
}

// Parse splits raw into its components. It never fails: malformed input
// yields best-effort, possibly empty, fields.
func Parse(raw string) ParsedURL {
	var u ParsedURL

	rest := raw
	if i := schemeEnd(raw); i > 0 {
		u.Scheme = strings.ToLower(raw[:i])
		rest = raw[i+1:]
	}

	// Protocol-relative input ("//host/path") carries an authority too.
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		end := strings.IndexAny(rest, "/?#")
		if end < 0 {
			end = len(rest)
		}
		u.Hostname = strings.ToLower(rest[:end])
		rest = rest[end:]
	}

	if i := strings.IndexByte(rest, '#'); i >= 0 {
		u.Fragment = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		u.Query = rest[i+1:]
		rest = rest[:i]
	}
	u.Path = rest

	return u
}

// schemeEnd returns the index of the ':' terminating a leading scheme
// ([A-Za-z][A-Za-z0-9+.-]*), or -1 if raw does not start with one.
func schemeEnd(raw string) int {
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9', c == '+', c == '-', c == '.':
			if i == 0 {
				return -1
			}
		case c == ':':
			return i
		default:
			return -1
		}
	}
	return -1
}
