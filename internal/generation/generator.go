package generation

import (
	"context"

	"github.com/stockpix/stockpix/internal/domain"
)

// IdeaGenerator produces distinct image concepts for a keyword. Each
// idea is a short natural-language description that seeds one image.
type IdeaGenerator interface {
	// GenerateIdeas returns n idea texts for the keyword in the given
	// visual style.
	GenerateIdeas(ctx context.Context, keyword string, n int, style string) ([]string, error)
}

// PromptGenerator turns an idea into the detailed English drawing
// prompt sent to the image model.
type PromptGenerator interface {
	// GenerateDrawingPrompt expands the idea into a ~100 word prompt
	// honoring the style's constraints.
	GenerateDrawingPrompt(ctx context.Context, idea string, style string) (string, error)
}

// MetadataGenerator synthesizes marketplace submission metadata for a
// registered image.
type MetadataGenerator interface {
	// GenerateMetadata returns a title, category, and tag set for an
	// image generated from drawingPrompt. Tags in mandatoryTags must
	// appear in the result when relevant.
	GenerateMetadata(ctx context.Context, drawingPrompt string, mandatoryTags []string) (*domain.Metadata, error)
}

// ImageRequest carries the per-image parameters of a generation call.
type ImageRequest struct {
	Prompt  string
	Size    string
	Quality string
}

// ImageGenerator renders a prompt into PNG bytes via the external
// image-generation API.
type ImageGenerator interface {
	// GenerateImage returns the raw PNG for the request.
	GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error)
}
