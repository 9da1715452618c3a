package task

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskInfo is a point-in-time snapshot of one task's progress.
type TaskInfo struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Status     TaskStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
	Result     string     `json:"result,omitempty"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Registry tracks the status of every submitted task so the API can
// answer status polls. Entries are kept for the lifetime of the
// process.
type Registry struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*TaskInfo
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[uuid.UUID]*TaskInfo)}
}

// Add records a freshly submitted task as pending.
func (r *Registry) Add(t Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID()] = &TaskInfo{
		ID:         t.ID(),
		Type:       t.Type(),
		Status:     TaskStatusPending,
		EnqueuedAt: time.Now().UTC(),
	}
}

// SetProcessing marks the task as picked up by a worker.
func (r *Registry) SetProcessing(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.tasks[id]; ok {
		info.Status = TaskStatusProcessing
	}
}

// SetCompleted marks the task as finished and stores its result
// reference.
func (r *Registry) SetCompleted(id uuid.UUID, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.tasks[id]; ok {
		now := time.Now().UTC()
		info.Status = TaskStatusCompleted
		info.Result = result
		info.FinishedAt = &now
	}
}

// SetFailed marks the task as failed with the given message.
func (r *Registry) SetFailed(id uuid.UUID, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.tasks[id]; ok {
		now := time.Now().UTC()
		info.Status = TaskStatusFailed
		info.Error = errMsg
		info.FinishedAt = &now
	}
}

// Get returns a copy of the task's current snapshot.
func (r *Registry) Get(id uuid.UUID) (TaskInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.tasks[id]
	if !ok {
		return TaskInfo{}, false
	}
	return *info, true
}
