package task

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrAlreadyInFlight is returned when a subject already has a queued or
// running task.
var ErrAlreadyInFlight = errors.New("analysis already in flight for subject")

// Deduplicator tracks which subjects have a task in the pipeline so that at
// most one outcome per subject is ever pending. Slots are keyed by subject and
// owned by the task that acquired them.
type Deduplicator struct {
	mu     sync.Mutex
	owners map[uuid.UUID]uuid.UUID
}

// NewDeduplicator creates an empty Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{owners: make(map[uuid.UUID]uuid.UUID)}
}

// TryAcquire claims the subject's slot for taskID. It returns false if
// another task holds it.
func (d *Deduplicator) TryAcquire(subjectID, taskID uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, held := d.owners[subjectID]; held {
		return false
	}
	d.owners[subjectID] = taskID
	return true
}

// Release frees the subject's slot if taskID owns it.
func (d *Deduplicator) Release(subjectID, taskID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if owner, held := d.owners[subjectID]; held && owner == taskID {
		delete(d.owners, subjectID)
	}
}

// Active reports whether the subject currently has a task in flight.
func (d *Deduplicator) Active(subjectID uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, held := d.owners[subjectID]
	return held
}

// Count returns the number of subjects in flight.
func (d *Deduplicator) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.owners)
}
