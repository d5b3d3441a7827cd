// Package lsp implements a Language Server Protocol server for Zen files.
package lsp
