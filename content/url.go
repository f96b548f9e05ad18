package content

import (
	"net/url"
	"path"
	"strings"
)

// IsAbsolute reports whether ref already names a full location: it carries a
// URL scheme (http:, https:, mailto:, data:, ...) or is protocol-relative.
func IsAbsolute(ref string) bool {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "//") {
		return true
	}
	u, err := url.Parse(ref)
	return err == nil && u.Scheme != ""
}

// IsFragment reports whether ref only points inside the current document.
func IsFragment(ref string) bool {
	return strings.HasPrefix(strings.TrimSpace(ref), "#")
}

// ResolveURL prefixes ref with base. Absolute references are returned
// unchanged. Every other reference, root-relative and "../" ones included,
// lands under base: its path is cleaned as if base were the root, and any
// query or fragment is kept.
func ResolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if IsAbsolute(ref) {
		return ref
	}
	p, rest := ref, ""
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		p, rest = ref[:i], ref[i:]
	}
	clean := strings.TrimPrefix(path.Clean("/"+p), "/")
	if clean != "" && strings.HasSuffix(p, "/") {
		clean += "/"
	}
	return normalizeBase(base) + clean + rest
}

// normalizeBase makes sure base ends with a slash so relative references
// resolve inside it rather than next to it.
func normalizeBase(base string) string {
	base = strings.TrimSpace(base)
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}
