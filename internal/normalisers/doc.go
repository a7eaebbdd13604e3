// Package normalisers provides the registry that routes raw files to
// format-specific normalisers. Each normaliser knows how to extract
// documents from a specific MIME type.
//
// DefaultRegistry wires every built-in normaliser.
package normalisers
