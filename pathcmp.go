package minizip

import "strings"

// normalizeSlashes rewrites backslashes to forward slashes so archive paths
// produced by either convention compare equal.
func normalizeSlashes(name string) string {
	if strings.IndexByte(name, '\\') < 0 {
		return name
	}
	return strings.ReplaceAll(name, "\\", "/")
}

// pathEqual reports whether a and b name the same archive entry, per the
// path comparator: slash-agnostic always, case-insensitive iff
// ignoreCase is set.
func pathEqual(a, b string, ignoreCase bool) bool {
	a, b = normalizeSlashes(a), normalizeSlashes(b)
	if ignoreCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// pathLess orders a before b using the same slash/case normalisation as
// pathEqual, for callers that want a deterministic entry ordering.
func pathLess(a, b string, ignoreCase bool) bool {
	a, b = normalizeSlashes(a), normalizeSlashes(b)
	if ignoreCase {
		return strings.ToLower(a) < strings.ToLower(b)
	}
	return a < b
}

// isDirName reports whether name's trailing separator marks a directory
// entry, per §4.3's "filename ends in / or \" read-side directory test.
func isDirName(name string) bool {
	return strings.HasSuffix(name, "/") || strings.HasSuffix(name, "\\")
}
