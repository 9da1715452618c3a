// Package api implements the HTTP handlers of the review server: run
// creation and inspection, the curation gallery, batch status changes,
// and submission-package downloads. Handlers depend on narrow service
// interfaces and translate service errors to HTTP status codes in one
// place.
package api
