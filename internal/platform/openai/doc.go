// Package openai implements the image-generation interface against an
// OpenAI-compatible images API over plain HTTP.
package openai
