// Package rag orchestrates a single question-answering flow: retrieve
// judgment chunks, assemble a grounded prompt with conversation
// history, generate an answer and validate its citations.
package rag

import (
	"context"
	"fmt"

	"github.com/vkotliar/gavel/internal/llm"
	"github.com/vkotliar/gavel/internal/memory"
	"github.com/vkotliar/gavel/internal/model"
)

// Searcher is the retrieval boundary. *retrieve.Retriever implements it.
type Searcher interface {
	Search(ctx context.Context, query string, numResults int) ([]model.SearchResult, error)
}

// Request is a single question against the indexed judgment.
type Request struct {
	Query string

	// SessionID selects the conversation; empty means a fresh session.
	SessionID string

	// NumResults caps retrieval; zero uses the configured default.
	NumResults int
}

// Engine wires retrieval, generation and conversation memory.
type Engine struct {
	cfg       model.RetrievalConfig
	retriever Searcher
	provider  llm.Provider
	sessions  *memory.Store
}

// NewEngine creates the orchestrator.
func NewEngine(cfg model.RetrievalConfig, retriever Searcher, provider llm.Provider, sessions *memory.Store) *Engine {
	return &Engine{
		cfg:       cfg,
		retriever: retriever,
		provider:  provider,
		sessions:  sessions,
	}
}

// Ask answers a question. On success the turn is recorded in session
// memory; on any failure nothing is recorded, so a retried question
// does not see a phantom half-turn in its history.
func (e *Engine) Ask(ctx context.Context, req Request) (*model.QueryResult, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = memory.NewSessionID()
	}

	contexts, err := e.retriever.Search(ctx, req.Query, req.NumResults)
	if err != nil {
		return &model.QueryResult{
			Failure:   model.FailureServiceUnavailable,
			SessionID: sessionID,
		}, fmt.Errorf("ask: %w", err)
	}
	if len(contexts) > e.cfg.MaxContexts {
		contexts = contexts[:e.cfg.MaxContexts]
	}

	history := e.sessions.Turns(sessionID)
	prompt := buildPrompt(history, contexts, req.Query)

	resp, err := e.provider.Generate(ctx, llm.GenerateRequest{
		System: systemPrompt,
		Prompt: prompt,
	})
	if err != nil {
		return &model.QueryResult{
			Failure:     model.FailureServiceUnavailable,
			SessionID:   sessionID,
			ContextUsed: len(contexts),
		}, fmt.Errorf("ask: generation: %w", err)
	}
	if resp.Text == "" {
		return &model.QueryResult{
			Failure:     model.FailureEmptyResult,
			SessionID:   sessionID,
			ContextUsed: len(contexts),
		}, fmt.Errorf("ask: %w: generation returned no text", model.ErrEmptyResult)
	}

	text, citations, strippedAny := validateCitations(resp.Text, contexts)

	result := &model.QueryResult{
		Response:    text,
		Citations:   citations,
		ContextUsed: len(contexts),
		ContextFree: len(contexts) == 0,
		SessionID:   sessionID,
		Model:       resp.Model,
		TokensUsed:  resp.TokensUsed,
	}
	if strippedAny {
		result.LowConfidence = true
		result.Failure = model.FailureCitationValidation
	}
	if result.ContextFree {
		result.LowConfidence = true
	}

	e.sessions.Append(sessionID, req.Query, text)
	return result, nil
}
