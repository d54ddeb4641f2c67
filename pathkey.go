package lactoserv

import (
	"errors"
	"strings"
)

// PathKey is an ordered sequence of path components plus a wildcard flag.
// It is used both for reversed hostname paths ("a.b.c" -> ["c", "b", "a"])
// and for URL paths ("/x/y/" -> ["x", "y", ""]). A PathKey is immutable
// once constructed.
//
// A wildcard PathKey matches any PathKey whose non-wildcard prefix equals
// its own Path.
type PathKey struct {
	path     []string
	wildcard bool
}

// NewPathKey returns a PathKey built from the given components. The slice
// is copied, so the caller's backing array may be reused afterward.
func NewPathKey(components []string, wildcard bool) PathKey {
	path := make([]string, len(components))
	copy(path, components)
	return PathKey{path: path, wildcard: wildcard}
}

// Path returns the ordered components of the key. The returned slice must
// not be mutated by the caller.
func (k PathKey) Path() []string {
	return k.path
}

// Wildcard reports whether the key is a wildcard key.
func (k PathKey) Wildcard() bool {
	return k.wildcard
}

// Depth returns the number of components in the key.
func (k PathKey) Depth() int {
	return len(k.path)
}

// Equal reports whether k and other have the same path and wildcard flag.
func (k PathKey) Equal(other PathKey) bool {
	if k.wildcard != other.wildcard || len(k.path) != len(other.path) {
		return false
	}
	for i, c := range k.path {
		if other.path[i] != c {
			return false
		}
	}
	return true
}

// IsPrefixOf reports whether k's path is a component-wise prefix of
// other's path. It does not consider wildcard flags.
func (k PathKey) IsPrefixOf(other PathKey) bool {
	if len(k.path) > len(other.path) {
		return false
	}
	for i, c := range k.path {
		if other.path[i] != c {
			return false
		}
	}
	return true
}

// Matches reports whether k (used as a pattern, which may be a wildcard
// key) matches the other key. A non-wildcard k matches only an equal
// other. A wildcard k matches any other whose non-wildcard prefix equals
// k's path.
func (k PathKey) Matches(other PathKey) bool {
	if !k.wildcard {
		return k.Equal(other)
	}
	return k.IsPrefixOf(other)
}

// Remainder returns the components of other beyond the length of k's path.
// It is meaningful only when k.IsPrefixOf(other).
func (k PathKey) Remainder(other PathKey) []string {
	return append([]string(nil), other.path[len(k.path):]...)
}

// Append returns a new PathKey with extra components appended to k's path.
// The wildcard flag of the result is taken from wildcard.
func (k PathKey) Append(extra []string, wildcard bool) PathKey {
	path := make([]string, 0, len(k.path)+len(extra))
	path = append(path, k.path...)
	path = append(path, extra...)
	return PathKey{path: path, wildcard: wildcard}
}

// String renders the key back into either hostname or URL path form,
// depending on asHostname. It is the inverse of ParseHostname / ParseURLPath
// for syntactically valid, non-wildcard input (a round trip through
// parse-then-String reproduces the original path).
func (k PathKey) String(asHostname bool) string {
	if asHostname {
		parts := make([]string, len(k.path))
		for i, c := range k.path {
			parts[len(k.path)-1-i] = c
		}
		s := strings.Join(parts, ".")
		if k.wildcard {
			if s == "" {
				return "*"
			}
			return "*." + s
		}
		return s
	}

	if len(k.path) == 0 {
		return "/"
	}
	return "/" + strings.Join(k.path, "/")
}

// ErrInvalidHostname is returned by ParseHostname for syntactically invalid
// hostnames.
var ErrInvalidHostname = errors.New("lactoserv: invalid hostname")

// ParseHostname parses a (possibly wildcard) SNI/Host hostname pattern into
// a reversed PathKey. "*" alone means "all hosts" (the empty wildcard key).
// "*.example.com" means a wildcard key matching example.com and any of its
// subdomains.
func ParseHostname(host string) (PathKey, error) {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return PathKey{}, ErrInvalidHostname
	}

	if host == "*" {
		return PathKey{wildcard: true}, nil
	}

	wildcard := false
	if strings.HasPrefix(host, "*.") {
		wildcard = true
		host = host[2:]
	}

	if host == "" || strings.Contains(host, "*") {
		return PathKey{}, ErrInvalidHostname
	}

	labels := strings.Split(host, ".")
	path := make([]string, len(labels))
	for i, l := range labels {
		if l == "" {
			return PathKey{}, ErrInvalidHostname
		}
		path[len(labels)-1-i] = l
	}

	return PathKey{path: path, wildcard: wildcard}, nil
}

// ParseURLPath parses a URL path into a forward PathKey. A trailing "/"
// (other than the root path) produces a trailing empty component. The
// returned key is never a wildcard key; callers that
// need a wildcard (e.g. for route registration) should set one with
// NewPathKey or Append.
func ParseURLPath(path string) PathKey {
	if path == "" || path == "/" {
		return PathKey{path: []string{}}
	}

	trimmed := strings.TrimPrefix(path, "/")
	parts := strings.Split(trimmed, "/")
	return PathKey{path: parts}
}
