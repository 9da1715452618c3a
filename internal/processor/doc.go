// Package processor contains the image post-processing steps that run
// between generation and submission, currently upscaling.
package processor
