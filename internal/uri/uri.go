// Package uri converts between filesystem paths and file:// URIs.
//
// Conversion follows the LSP convention of percent-encoding everything
// outside the unreserved byte set, and normalizes decoded paths to NFC /
// forward slashes so that URIs for the same file always compare equal
// regardless of how the client encoded them.
package uri

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidURI is returned by ToPath when the input is not a well-formed
// file:// URI.
type ErrInvalidURI struct {
	URI    string
	Reason string
}

func (e *ErrInvalidURI) Error() string {
	return fmt.Sprintf("invalid uri %q: %s", e.URI, e.Reason)
}

const (
	hextable   = "0123456789ABCDEF"
	unreserved = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789/._~-"
)

func isUnreserved(c byte) bool {
	return strings.IndexByte(unreserved, c) >= 0
}

// percentEncode encodes every byte of path that is not in the unreserved
// set as %HH using upper-case hex, per spec.md §4.2.
func percentEncode(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	for i := 0; i < len(path); i++ {
		c := path[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hextable[c>>4])
		b.WriteByte(hextable[c&0xF])
	}
	return b.String()
}

// percentDecode is the inverse of percentEncode. It returns an error if a
// '%' is not followed by two valid hex digits.
func percentDecode(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("truncated percent-escape at offset %d", i)
		}
		hi, ok1 := hexVal(s[i+1])
		lo, ok2 := hexVal(s[i+2])
		if !ok1 || !ok2 {
			return "", fmt.Errorf("malformed percent-escape %q at offset %d", s[i:i+3], i)
		}
		b.WriteByte(byte(hi<<4 | lo))
		i += 2
	}
	return b.String(), nil
}

func hexVal(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

func isWindowsDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// FromPath converts a filesystem path to a file:// URI.
//
// Relative paths are made absolute first. On Windows, "C:\foo\bar" becomes
// "file:///C:/foo/bar"; on POSIX, "/foo/bar" becomes "file:///foo/bar".
func FromPath(path string) string {
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	path = filepath.ToSlash(path)
	if runtime.GOOS == "windows" && len(path) >= 2 && isWindowsDriveLetter(path[0]) && path[1] == ':' {
		path = "/" + path
	}

	return "file://" + percentEncode(path)
}

// ToPath converts a file:// URI to a filesystem path. Returns ErrInvalidURI
// if the scheme is not "file" or the percent-encoding is malformed.
func ToPath(u string) (string, error) {
	const prefix = "file://"
	if !strings.HasPrefix(u, prefix) {
		return "", &ErrInvalidURI{URI: u, Reason: "scheme is not file://"}
	}

	rest := u[len(prefix):]
	// Strip a query string or fragment, which some clients append.
	if idx := strings.IndexAny(rest, "?#"); idx >= 0 {
		rest = rest[:idx]
	}

	decoded, err := percentDecode(rest)
	if err != nil {
		return "", &ErrInvalidURI{URI: u, Reason: err.Error()}
	}

	decoded = norm.NFC.String(decoded)

	path := decoded
	if runtime.GOOS == "windows" {
		if len(path) >= 3 && path[0] == '/' && isWindowsDriveLetter(path[1]) && path[2] == ':' {
			path = path[1:]
		}
		path = filepath.FromSlash(path)
	}

	if path == "" {
		return "", &ErrInvalidURI{URI: u, Reason: "empty path"}
	}

	return path, nil
}

// Ext returns the lower-cased filesystem extension (including the leading
// dot) for the given URI, or "" if the URI cannot be decoded.
func Ext(u string) string {
	path, err := ToPath(u)
	if err != nil {
		return ""
	}
	return strings.ToLower(filepath.Ext(path))
}
