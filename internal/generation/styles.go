package generation

// Style bundles the prompt constraints of one visual style.
type Style struct {
	// Label is the human-readable name shown in the UI.
	Label string `json:"label"`

	// IdeaPrompt constrains idea synthesis.
	IdeaPrompt string `json:"idea_prompt"`

	// DrawingPrompt constrains the final English drawing prompt.
	DrawingPrompt string `json:"drawing_prompt"`
}

// DefaultStyle is used when a run specifies no style.
const DefaultStyle = "japanese_simple"

// Styles are the built-in style definitions.
var Styles = map[string]Style{
	"japanese_simple": {
		Label:         "Japanese Simple Line Art",
		IdeaPrompt:    "Minimalist illustration with at most 5 colors. Simple hand-drawn line art with clean strokes. Effective use of negative space. Contemporary Japanese illustration style. Transparent background.",
		DrawingPrompt: "Minimalist Japanese line art, simple, clean lines, maximum 5 colors, ample negative space, faceless characters, modern illustration style. White background. No text.",
	},
	"photorealistic": {
		Label:         "Photorealistic",
		IdeaPrompt:    "Realistic photographic style. High quality lighting, detailed textures, appropriate depth of field. Practical compositions usable as stock photos.",
		DrawingPrompt: "Photorealistic, high quality, highly detailed, cinematic lighting, 8k resolution, professional photography style, shallow depth of field where appropriate. No text.",
	},
	"watercolor": {
		Label:         "Soft Watercolor",
		IdeaPrompt:    "Soft watercolor style centered on pastel colors. Expression that uses bleeding and brush touches. White or pale background.",
		DrawingPrompt: "Soft watercolor painting, pastel colors, gentle brush strokes, wet-on-wet technique, artistic, dreamy atmosphere. White background. No text.",
	},
	"isometric_3d": {
		Label:         "Isometric 3D",
		IdeaPrompt:    "Isometric 3D illustration. Clean rendering with bright colors. Suited to technology, business, and logistics themes.",
		DrawingPrompt: "Isometric 3D illustration, clean 3D rendering, bright colors, clay render style or low poly, soft lighting. White background. No text.",
	},
	"anime_vibrant": {
		Label:         "Vibrant Anime",
		IdeaPrompt:    "Vivid anime style. Clear outlines, high saturation, dynamic composition. High quality rendering like commercial Japanese animation.",
		DrawingPrompt: "High quality anime style, vibrant colors, clear outlines, cel shading, dynamic composition. No text.",
	},
	"none": {
		Label: "None",
	},
}

// StyleFor resolves a style name, falling back to an empty style for
// unknown names so generation still proceeds.
func StyleFor(name string) Style {
	if s, ok := Styles[name]; ok {
		return s
	}
	return Styles["none"]
}
