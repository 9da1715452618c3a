package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/stockpix/stockpix/internal/config"
	"github.com/stockpix/stockpix/internal/domain"
	"github.com/stockpix/stockpix/internal/generation"
)

// fallbackCategory is used when the model returns a category outside
// the marketplace's 1-21 range. 8 is "Graphic Resources".
const fallbackCategory = 8

// Generator implements generation.IdeaGenerator, PromptGenerator, and
// MetadataGenerator against the Gemini API.
type Generator struct {
	logger *slog.Logger
	cfg    config.LLMConfig
	client *genai.Client
	model  string
}

// NewGenerator creates a Generator with the provided dependencies.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger: logger,
		cfg:    cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// GenerateIdeas implements generation.IdeaGenerator.
func (g *Generator) GenerateIdeas(ctx context.Context, keyword string, n int, style string) ([]string, error) {
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}
	if n < 1 {
		n = 1
	}

	styleDef := generation.StyleFor(style)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Propose %d distinct, detailed descriptions of images for the theme below.\n\n", n)
	fmt.Fprintf(&sb, "Theme: %s\n\n", keyword)
	sb.WriteString("Rules:\n")
	sb.WriteString("- No logos, company names, brands, real people, or copyrighted characters.\n")
	sb.WriteString("- No text inside the image.\n")
	if styleDef.IdeaPrompt != "" {
		fmt.Fprintf(&sb, "- Style: %s\n", styleDef.IdeaPrompt)
	}
	fmt.Fprintf(&sb,
		"\nRespond with JSON only: {\"descriptions\": [exactly %d strings]}.\n", n)

	raw, err := g.callWithRetry(ctx, sb.String())
	if err != nil {
		return nil, err
	}

	var parsed ideasSchema
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse ideas response: %v", generation.ErrInvalidResponse, err)
	}
	if len(parsed.Descriptions) == 0 {
		return nil, fmt.Errorf("%w: no descriptions returned", generation.ErrInvalidResponse)
	}
	if len(parsed.Descriptions) > n {
		parsed.Descriptions = parsed.Descriptions[:n]
	}
	return parsed.Descriptions, nil
}

// GenerateDrawingPrompt implements generation.PromptGenerator.
func (g *Generator) GenerateDrawingPrompt(ctx context.Context, idea string, style string) (string, error) {
	if idea == "" {
		return "", ErrEmptyIdea
	}

	constraints := generation.StyleFor(style).DrawingPrompt
	if constraints == "" {
		constraints = generation.StyleFor(generation.DefaultStyle).DrawingPrompt
	}

	var sb strings.Builder
	sb.WriteString("Translate the following image description into a detailed English drawing prompt of about 100 words. ")
	sb.WriteString("Focus on visual details, style, and composition. ")
	sb.WriteString("Do NOT include meta instructions like \"create an image\".\n\n")
	fmt.Fprintf(&sb, "Original description: %s\n\n", idea)
	fmt.Fprintf(&sb, "Style constraints: %s\n\n", constraints)
	sb.WriteString("Respond with JSON only: {\"prompt\": \"...\"}.\n")

	raw, err := g.callWithRetry(ctx, sb.String())
	if err != nil {
		return "", err
	}

	var parsed drawingPromptSchema
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", fmt.Errorf("%w: failed to parse prompt response: %v", generation.ErrInvalidResponse, err)
	}
	if parsed.Prompt == "" {
		return "", fmt.Errorf("%w: empty drawing prompt returned", generation.ErrInvalidResponse)
	}
	return parsed.Prompt, nil
}

// GenerateMetadata implements generation.MetadataGenerator.
func (g *Generator) GenerateMetadata(ctx context.Context, drawingPrompt string, mandatoryTags []string) (*domain.Metadata, error) {
	if drawingPrompt == "" {
		return nil, ErrEmptyPrompt
	}

	var sb strings.Builder
	sb.WriteString("You are an experienced stock marketplace contributor. ")
	sb.WriteString("Generate submission metadata for an image produced from this prompt:\n\n")
	fmt.Fprintf(&sb, "%q\n\n", drawingPrompt)
	sb.WriteString("Requirements:\n")
	sb.WriteString("1. Title: descriptive and natural, 20-30 characters.\n")
	fmt.Fprintf(&sb, "2. Tags: 30-40 keywords, no duplicates. Include these mandatory tags when relevant: %s.\n",
		strings.Join(mandatoryTags, ", "))
	sb.WriteString("3. Category: pick the best fitting ID from: ")
	sb.WriteString("1 Animals, 2 Buildings and Architecture, 3 Business, 4 Drinks, 5 The Environment, ")
	sb.WriteString("6 States of Mind, 7 Food, 8 Graphic Resources, 9 Hobbies and Leisure, 10 Industry, ")
	sb.WriteString("11 Landscapes, 12 Lifestyle, 13 People, 14 Plants and Flowers, 15 Culture and Religion, ")
	sb.WriteString("16 Science, 17 Social Issues, 18 Sports, 19 Technology, 20 Transport, 21 Travel.\n\n")
	sb.WriteString("Respond with JSON only: {\"title\": \"...\", \"tags\": [\"...\"], \"category\": N}.\n")

	raw, err := g.callWithRetry(ctx, sb.String())
	if err != nil {
		return nil, err
	}

	var parsed metadataSchema
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse metadata response: %v", generation.ErrInvalidResponse, err)
	}
	if parsed.Title == "" {
		return nil, fmt.Errorf("%w: empty title returned", generation.ErrInvalidResponse)
	}
	if parsed.Category < 1 || parsed.Category > 21 {
		g.logger.WarnContext(ctx, "model returned out-of-range category, using fallback",
			"category", parsed.Category,
			"fallback", fallbackCategory)
		parsed.Category = fallbackCategory
	}

	return &domain.Metadata{
		Title:    parsed.Title,
		Category: parsed.Category,
		Tags:     mergeTags(parsed.Tags, mandatoryTags),
	}, nil
}

// mergeTags appends any mandatory tag the model omitted, preserving
// order and dropping duplicates.
func mergeTags(tags, mandatory []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags)+len(mandatory))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	for _, t := range mandatory {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// callWithRetry makes a Gemini call with exponential backoff and
// jitter for transient errors. Permanent errors (blocked content,
// malformed responses) are returned immediately.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := g.cfg.MaxRetries
	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	baseDelaySeconds := g.cfg.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		g.logger.DebugContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		text, transient, err := g.callOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if !transient {
			return "", err
		}
		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, maxRetries, err)
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoff := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5) * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callOnce performs one Gemini call. The second return value reports
// whether the error is worth retrying.
func (g *Generator) callOnce(ctx context.Context, prompt string) (string, bool, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		return "", true, fmt.Errorf("gemini API call error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", false, fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", false, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", false, fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}
	return text, false, nil
}
