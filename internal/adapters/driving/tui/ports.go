// Package tui provides an interactive terminal interface for asking
// questions about the indexed news corpus.
package tui

import (
	"github.com/custodia-labs/newsrag/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Answer answers questions. Required.
	Answer driving.AnswerService

	// Retrieval loads the index on start. Optional; without it the TUI
	// assumes the index is already built.
	Retrieval driving.RetrievalService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(answer driving.AnswerService, retrieval driving.RetrievalService) *Ports {
	return &Ports{
		Answer:    answer,
		Retrieval: retrieval,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
