package pipeline

import (
	"context"

	"github.com/Veraticus/due-process/internal/extract"
	"github.com/Veraticus/due-process/internal/model"
)

// MockExtractor is a test double for the Extractor boundary.
type MockExtractor struct {
	Err        error
	Candidates []extract.Candidate
	Calls      int
	LastBatch  []model.SanitizedMessage
}

// Extract returns the configured candidates or error.
func (m *MockExtractor) Extract(_ context.Context, batch []model.SanitizedMessage) ([]extract.Candidate, error) {
	m.Calls++
	m.LastBatch = batch
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Candidates, nil
}
