package mcp

import (
	"github.com/custodia-labs/newsrag/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Retrieval finds the chunks nearest a query.
	Retrieval driving.RetrievalService

	// Answer generates answers. The ask tool is only offered when set.
	Answer driving.AnswerService

	// Document lists stored documents for the resources.
	Document driving.DocumentService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
