package lsp

import "github.com/zenlang/zls/internal/uri"

// PathToURI converts a filesystem path to a file:// URI.
func PathToURI(path string) string {
	return uri.FromPath(path)
}

// URIToPath converts a file:// URI to a filesystem path.
func URIToPath(u string) (string, error) {
	return uri.ToPath(u)
}
