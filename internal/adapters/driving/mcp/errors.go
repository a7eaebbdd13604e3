// Package mcp provides an MCP (Model Context Protocol) server adapter for newsrag.
// It lets AI assistants retrieve news context and ask questions of the corpus.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
