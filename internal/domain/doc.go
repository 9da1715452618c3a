// Package domain defines the core entities of the image pipeline:
// image records, run manifests, and the status transition rules that
// govern curation. It has no dependencies on storage or transport.
package domain
