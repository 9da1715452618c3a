package gemini

// ideasSchema is the expected JSON shape of an idea generation
// response.
type ideasSchema struct {
	// Descriptions is the list of distinct image descriptions.
	Descriptions []string `json:"descriptions"`
}

// drawingPromptSchema is the expected JSON shape of a prompt expansion
// response.
type drawingPromptSchema struct {
	// Prompt is the detailed English drawing prompt.
	Prompt string `json:"prompt"`
}

// metadataSchema is the expected JSON shape of a metadata synthesis
// response.
type metadataSchema struct {
	// Title is a concise descriptive listing title.
	Title string `json:"title"`

	// Tags are 30-40 search keywords.
	Tags []string `json:"tags"`

	// Category is the marketplace category ID (1-21).
	Category int `json:"category"`
}
