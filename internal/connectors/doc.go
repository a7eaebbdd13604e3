// Package connectors holds the sources newsrag reads raw files from.
// Only the local filesystem is supported; see package filesystem.
package connectors
