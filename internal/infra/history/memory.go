// Package history stores completed generation runs.
package history

import (
	"context"
	"sync"

	"github.com/yanqian/textcraft/internal/domain/textcraft"
)

const defaultCapacity = 500

// MemoryRepository keeps the most recent runs in a ring buffer.
type MemoryRepository struct {
	mu       sync.RWMutex
	runs     []textcraft.Run
	next     int
	full     bool
	capacity int
}

// NewMemoryRepository constructs an in-memory run log.
func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &MemoryRepository{runs: make([]textcraft.Run, capacity), capacity: capacity}
}

func (r *MemoryRepository) Append(_ context.Context, run textcraft.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[r.next] = run
	r.next = (r.next + 1) % r.capacity
	if r.next == 0 {
		r.full = true
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (r *MemoryRepository) Recent(_ context.Context, limit int) ([]textcraft.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	size := r.next
	if r.full {
		size = r.capacity
	}
	if limit <= 0 || limit > size {
		limit = size
	}
	out := make([]textcraft.Run, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + r.capacity) % r.capacity
		out = append(out, r.runs[idx])
	}
	return out, nil
}

var _ textcraft.HistoryRepository = (*MemoryRepository)(nil)
