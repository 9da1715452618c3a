// Package service contains the application-specific use cases of the
// pipeline. It orchestrates interactions between domain objects, the
// object store, and the external generation backends to fulfill the
// three stages: generation (RunService), curation (CurationService),
// and fulfillment (FulfillmentService).
//
// Services receive dependencies through constructor injection and never
// depend on specific infrastructure implementations. Each run's status
// document is mutated under a per-run lock so concurrent batches cannot
// interleave their read-modify-write cycles.
package service
