// Package gemini implements the generation interfaces using Google's
// Gemini API: idea synthesis, drawing-prompt expansion, and stock
// metadata synthesis. All calls request JSON responses and share a
// bounded retry policy with exponential backoff.
package gemini
