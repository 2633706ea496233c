// Package pathutil provides path manipulation for slash-separated archive paths.
package pathutil

import "strings"

// Base returns the last element of a slash-separated path.
// If path is empty or ".", it returns ".".
func Base(path string) string {
	if path == "" || path == "." {
		return "."
	}
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Clean converts backslashes to slashes and drops empty segments, so
// "a//b/" and `a\b` both become "a/b". It does not resolve "." or "..".
func Clean(path string) string {
	parts := strings.Split(strings.ReplaceAll(path, `\`, "/"), "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, "/")
}

// Ext returns the extension of the last element, including the dot.
// A leading dot in the last element does not start an extension.
func Ext(path string) string {
	base := Base(path)
	i := strings.LastIndex(base, ".")
	if i <= 0 {
		return ""
	}
	return base[i:]
}

// TrimExt removes the extension of the last element.
func TrimExt(path string) string {
	return strings.TrimSuffix(path, Ext(path))
}

// ReplaceExt replaces the extension of the last element with "." + ext.
// Paths without an extension get one appended.
func ReplaceExt(path, ext string) string {
	return TrimExt(path) + "." + ext
}

// IsLocal reports whether path stays inside the directory it is joined to:
// it is non-empty, relative and has no ".." element.
func IsLocal(path string) bool {
	if path == "" || strings.HasPrefix(path, "/") {
		return false
	}
	for part := range strings.SplitSeq(path, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
