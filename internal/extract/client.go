// Package extract is the boundary to the external text-understanding
// service. Its output is untrusted until the grounding validator has
// confirmed every field against the original message.
package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/due-process/internal/common"
	"github.com/Veraticus/due-process/internal/model"
)

// Client defines the interface for LLM providers.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds LLM provider configuration.
type Config struct {
	Provider          string
	APIKey            string
	Model             string
	Temperature       float64
	MaxTokens         int
	RequestsPerMinute int
}

// Candidate is the extractor's best guess for one message, addressed by
// Index back into the sanitized batch. It is deliberately a distinct type
// from model.BillRecord: ungrounded data cannot reach the ledger.
type Candidate struct {
	Index     int     `json:"index"`
	CardLast4 string  `json:"cardLast4"`
	Amount    float64 `json:"amount"`
	DueDate   string  `json:"dueDate"`
	MinDue    float64 `json:"minDue"`
}

// Extractor wraps a provider client with prompting, rate limiting, and
// response parsing.
type Extractor struct {
	client  Client
	limiter *rateLimiter
}

// New creates an extractor for the configured provider.
func New(cfg Config) (*Extractor, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		client:  client,
		limiter: newRateLimiter(cfg.RequestsPerMinute),
	}, nil
}

// NewWithClient creates an extractor around an existing client. Used by
// tests and by callers that construct providers themselves.
func NewWithClient(client Client) *Extractor {
	return &Extractor{
		client:  client,
		limiter: newRateLimiter(0),
	}
}

// Extract sends the sanitized batch to the provider and parses its response
// into candidates. A malformed response yields an empty candidate list, not
// an error; an unreachable provider is ErrExtractorUnavailable.
func (e *Extractor) Extract(ctx context.Context, batch []model.SanitizedMessage) ([]Candidate, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	if err := e.limiter.wait(ctx); err != nil {
		return nil, err
	}

	prompt := BuildPrompt(batch)
	response, err := e.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrExtractorUnavailable, err)
	}

	candidates, err := ParseCandidates(response)
	if err != nil {
		slog.Warn("Extractor response unparseable, treating as zero candidates",
			"error", err,
			"response_length", len(response))
		return nil, nil
	}

	return candidates, nil
}

// Close releases the extractor's rate limiter.
func (e *Extractor) Close() {
	e.limiter.Close()
}
