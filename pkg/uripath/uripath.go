// Package uripath provides the small URI value that asset paths are rewritten
// through.
//
// It deliberately keeps less structure than net/url: paths are never
// escaped or cleaned, and an empty query that was present in the source
// ("font.eot?#iefix") survives a round trip. Both matter when the result is
// embedded in markup exactly as written.
//
//	u := uripath.Parse("fonts/icons.eot?#iefix")
//	u.PrependPath("/assets")
//	u.AppendQuery("body=1")
//	u.String() // "/assets/fonts/icons.eot?body=1#iefix"
package uripath

import (
	"path"
	"regexp"
	"strings"
)

// externalPattern matches sources that are already complete URIs.
var externalPattern = regexp.MustCompile(`^[A-Za-z][-A-Za-z0-9+.]*://|^cid:|^//`)

// schemePattern matches a scheme followed by an authority.
var schemePattern = regexp.MustCompile(`^([A-Za-z][-A-Za-z0-9+.]*)://`)

// IsExternal reports whether source is an absolute reference (scheme://,
// cid: or protocol-relative //host) that must be passed through untouched.
func IsExternal(source string) bool {
	return externalPattern.MatchString(source)
}

// URI is a parsed asset reference.
type URI struct {
	// Scheme is the URI scheme without "://", empty for relative references.
	Scheme string

	// Host is the authority. A non-empty host makes the URI absolute.
	Host string

	// Path is always present, possibly empty.
	Path string

	// Query is the raw query without the leading "?".
	Query string

	// Fragment is the raw fragment without the leading "#".
	Fragment string

	hasQuery    bool
	hasFragment bool
}

// Parse splits source into its components. Parsing never fails; anything
// that is not recognised as scheme or authority becomes part of the path.
func Parse(source string) *URI {
	u := &URI{}
	rest := source

	if i := strings.IndexByte(rest, '#'); i >= 0 {
		u.Fragment = rest[i+1:]
		u.hasFragment = true
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		u.Query = rest[i+1:]
		u.hasQuery = true
		rest = rest[:i]
	}

	switch {
	case schemePattern.MatchString(rest):
		m := schemePattern.FindStringSubmatch(rest)
		u.Scheme = m[1]
		rest = rest[len(m[0]):]
		u.Host, u.Path = splitAuthority(rest)
	case strings.HasPrefix(rest, "//"):
		u.Host, u.Path = splitAuthority(rest[2:])
	default:
		u.Path = rest
	}

	return u
}

func splitAuthority(s string) (host, p string) {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

// Clone returns an independent copy of u.
func (u *URI) Clone() *URI {
	c := *u
	return &c
}

// IsAbsolute reports whether u carries an authority.
func (u *URI) IsAbsolute() bool {
	return u.Host != ""
}

// Rooted reports whether the path is root-relative.
func (u *URI) Rooted() bool {
	return strings.HasPrefix(u.Path, "/")
}

// HasQuery reports whether a query component is present, even if empty.
func (u *URI) HasQuery() bool {
	return u.hasQuery || u.Query != ""
}

// HasFragment reports whether a fragment component is present, even if empty.
func (u *URI) HasFragment() bool {
	return u.hasFragment || u.Fragment != ""
}

// HasExtension reports whether the path already ends in ".ext".
func (u *URI) HasExtension(ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	return path.Ext(u.Path) == "."+ext
}

// AppendExtension adds ".ext" to the path component.
func (u *URI) AppendExtension(ext string) {
	u.Path += "." + strings.TrimPrefix(ext, ".")
}

// AppendQuery adds token to the query, joining with "&" when a query is
// already present. A token that is already part of the query is not added
// again.
func (u *URI) AppendQuery(token string) {
	if token == "" {
		return
	}
	u.hasQuery = true
	if u.Query == "" {
		u.Query = token
		return
	}
	for _, part := range strings.Split(u.Query, "&") {
		if part == token {
			return
		}
	}
	u.Query += "&" + token
}

// PrependPath joins prefix in front of the path. When prefix is itself an
// absolute URI, u moves to the prefix's scheme and host.
func (u *URI) PrependPath(prefix string) {
	p := Parse(prefix)
	u.Path = Join(p.Path, u.Path)
	if p.IsAbsolute() {
		u.Scheme = p.Scheme
		u.Host = p.Host
	}
}

// PathQuery returns the path and query without scheme, host or fragment.
func (u *URI) PathQuery() string {
	if u.HasQuery() {
		return u.Path + "?" + u.Query
	}
	return u.Path
}

// String renders u back into a reference.
func (u *URI) String() string {
	var b strings.Builder

	if u.Host != "" {
		if u.Scheme != "" {
			b.WriteString(u.Scheme)
			b.WriteString("://")
		} else {
			b.WriteString("//")
		}
		b.WriteString(u.Host)
		if u.Path != "" && !u.Rooted() {
			b.WriteByte('/')
		}
	} else if u.Scheme != "" {
		b.WriteString(u.Scheme)
		b.WriteByte(':')
	}

	b.WriteString(u.Path)

	if u.HasQuery() {
		b.WriteByte('?')
		b.WriteString(u.Query)
	}
	if u.HasFragment() {
		b.WriteByte('#')
		b.WriteString(u.Fragment)
	}

	return b.String()
}

// Join concatenates path elements with exactly one "/" between them. Unlike
// path.Join it never cleans "." or ".." segments, and an empty first element
// yields a root-relative result.
func Join(elems ...string) string {
	if len(elems) == 0 {
		return ""
	}
	result := elems[0]
	for _, e := range elems[1:] {
		result = strings.TrimRight(result, "/") + "/" + strings.TrimLeft(e, "/")
	}
	return result
}
