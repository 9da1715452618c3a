package service

import "sync"

// RunLocks hands out one mutex per run ID so each run's status
// document has a single writer at a time within this process. Pass the
// same RunLocks to CurationService and FulfillmentService so their
// read-modify-write cycles serialize against each other.
type RunLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRunLocks creates an empty lock set.
func NewRunLocks() *RunLocks {
	return &RunLocks{locks: make(map[string]*sync.Mutex)}
}

// get returns the mutex for runID, creating it on first use. Locks are
// never evicted; the set of runs is small.
func (r *RunLocks) get(runID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[runID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[runID] = lock
	}
	return lock
}
