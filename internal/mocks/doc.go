// Package mocks provides hand-written test doubles shared across
// packages: an in-memory object store and configurable fakes for the
// generation interfaces.
package mocks
