// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/newsrag/internal/core/domain"
)

// AskRequested is a command to answer a question.
type AskRequested struct {
	Query string
	TopK  int
}

// AnswerCompleted carries the answer back to the model.
type AnswerCompleted struct {
	Query  string
	Answer *domain.Answer
	Err    error
}

// IndexLoaded reports the start-up index rebuild.
type IndexLoaded struct {
	Stats domain.IngestStats
	Err   error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Mode is what the ask view is currently doing.
type Mode int

const (
	// ModeInput is typing a question.
	ModeInput Mode = iota
	// ModeThinking is waiting for an answer.
	ModeThinking
	// ModeAnswer is showing an answer and its sources.
	ModeAnswer
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeInput:
		return "input"
	case ModeThinking:
		return "thinking"
	case ModeAnswer:
		return "answer"
	default:
		return "unknown"
	}
}
