// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// RetrievalService owns the vector index and the chunk key format.
// DocumentService keeps the document store and the index in step,
// AnswerService turns retrieved chunks into a prompt for the LLM, and
// SettingsService maps config keys onto domain.Settings.
package services
