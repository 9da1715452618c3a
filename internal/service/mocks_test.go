package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/stockpix/stockpix/internal/domain"
	"github.com/stockpix/stockpix/internal/generation"
	"github.com/stockpix/stockpix/internal/processor"
)

// mockIdeaGenerator returns canned ideas and records call counts.
type mockIdeaGenerator struct {
	ideas []string
	err   error
	calls int
}

func (m *mockIdeaGenerator) GenerateIdeas(ctx context.Context, keyword string, n int, style string) ([]string, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.ideas, nil
}

// mockPromptGenerator expands ideas deterministically. errFor fails a
// specific idea to exercise skip-on-error behavior.
type mockPromptGenerator struct {
	errFor map[string]error
	calls  int
}

func (m *mockPromptGenerator) GenerateDrawingPrompt(ctx context.Context, idea string, style string) (string, error) {
	m.calls++
	if err, ok := m.errFor[idea]; ok {
		return "", err
	}
	return "prompt for " + idea, nil
}

// mockImageGenerator returns one-byte-per-prompt fake PNGs. errFor
// fails requests whose prompt contains the key.
type mockImageGenerator struct {
	errFor map[string]error
	calls  int
}

func (m *mockImageGenerator) GenerateImage(ctx context.Context, req generation.ImageRequest) ([]byte, error) {
	m.calls++
	for key, err := range m.errFor {
		if key != "" && strings.Contains(req.Prompt, key) {
			return nil, err
		}
	}
	return []byte("png:" + req.Prompt), nil
}

// mockMetadataGenerator synthesizes deterministic metadata. errFor
// fails prompts containing the key. Calls are tracked per prompt so
// idempotence tests can assert no repeat work.
type mockMetadataGenerator struct {
	mu     sync.Mutex
	errFor map[string]error
	calls  map[string]int
}

func newMockMetadataGenerator() *mockMetadataGenerator {
	return &mockMetadataGenerator{calls: make(map[string]int)}
}

func (m *mockMetadataGenerator) GenerateMetadata(ctx context.Context, drawingPrompt string, mandatoryTags []string) (*domain.Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[drawingPrompt]++
	for key, err := range m.errFor {
		if key != "" && strings.Contains(drawingPrompt, key) {
			return nil, err
		}
	}
	tags := append([]string{"tag-a", "tag-b"}, mandatoryTags...)
	return &domain.Metadata{Title: "title for " + drawingPrompt, Category: 8, Tags: tags}, nil
}

func (m *mockMetadataGenerator) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// mockUpscaler derives the upscaled key without touching storage.
// errFor fails specific source keys.
type mockUpscaler struct {
	mu     sync.Mutex
	errFor map[string]error
	calls  map[string]int
}

func newMockUpscaler() *mockUpscaler {
	return &mockUpscaler{calls: make(map[string]int)}
}

func (m *mockUpscaler) Upscale(ctx context.Context, sourceKey string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[sourceKey]++
	if err, ok := m.errFor[sourceKey]; ok {
		return "", err
	}
	return processor.UpscaledKey(sourceKey), nil
}

func (m *mockUpscaler) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// sourceKey builds the object key generation writes a record's image to.
func sourceKey(runID, id string) string {
	return fmt.Sprintf("output/%s/generated_images/%s.png", runID, id)
}
