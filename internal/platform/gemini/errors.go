package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyKeyword is returned when idea generation gets no keyword.
	ErrEmptyKeyword = errors.New("keyword cannot be empty")

	// ErrEmptyIdea is returned when prompt expansion gets no idea text.
	ErrEmptyIdea = errors.New("idea text cannot be empty")

	// ErrEmptyPrompt is returned when metadata generation gets no
	// drawing prompt.
	ErrEmptyPrompt = errors.New("drawing prompt cannot be empty")
)
