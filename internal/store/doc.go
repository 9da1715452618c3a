// Package store defines the persistence interfaces of the pipeline:
// an object store abstraction over the remote bucket, the manifest
// store that owns each run's status document, and the append-only run
// history. The interfaces keep the workflow logic independent of the
// concrete storage backend.
package store
