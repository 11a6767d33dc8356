package executor

import (
	"sync"

	"github.com/google/uuid"
)

// inFlight de-duplicates executions per schedule id within one process: at
// most one execute-then-persist sequence runs for a given id at any time.
type inFlight struct {
	mu  sync.Mutex
	ids map[uuid.UUID]struct{}
}

func newInFlight() *inFlight {
	return &inFlight{ids: make(map[uuid.UUID]struct{})}
}

func (f *inFlight) TryAcquire(id uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.ids[id]; busy {
		return false
	}
	f.ids[id] = struct{}{}
	return true
}

func (f *inFlight) Release(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ids, id)
}
