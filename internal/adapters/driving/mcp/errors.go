// Package mcp provides an MCP (Model Context Protocol) server adapter for
// DocAnalyser. It lets AI assistants search the local library and read
// document content over stdio or HTTP.
package mcp

import "errors"

// ErrMissingLibraryService is returned when the library service is not provided.
var ErrMissingLibraryService = errors.New("mcp: library service is required")
