// Package main implements the entry point for the stockpix review
// server, which drives image generation runs and serves the curation
// API a reviewer works against.
package main

import (
	"context"
	"log"
)

// main wires configuration, logging, storage, the generation backends,
// and the HTTP server together, then blocks until shutdown.
func main() {
	ctx := context.Background()

	app, err := initializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
