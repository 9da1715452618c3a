// Package generation defines the boundary between the pipeline core
// and the external AI services it depends on: idea and drawing-prompt
// synthesis, stock metadata synthesis, and image generation. Concrete
// clients live under internal/platform.
package generation
