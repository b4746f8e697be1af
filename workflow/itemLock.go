package workflow

import (
	"fmt"
	"sort"
	"sync"
)

// Stock mutations serialize per (location, item) pair so two concurrent
// requests can never interleave their read-modify-write of quantity.
// Cross-item mutations proceed fully in parallel. Transfers acquire both
// pair locks in a fixed global order (lower location id first) to prevent
// deadlock between two transfers moving stock in opposite directions.
//
// The DB row lock (SELECT ... FOR UPDATE) inside the transaction remains the
// second line of defense for multi-instance deployments.
type itemLockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var stockLocks = &itemLockRegistry{locks: map[string]*sync.Mutex{}}

func stockLockKey(locationId, itemId int) string {
	return fmt.Sprintf("%09d:%09d", locationId, itemId)
}

func (r *itemLockRegistry) get(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock := r.locks[key]
	if lock == nil {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	return lock
}

// acquire locks the given keys in sorted order and returns the release
// function. Duplicate keys are collapsed.
func (r *itemLockRegistry) acquire(keys ...string) func() {
	unique := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if !seen[key] {
			seen[key] = true
			unique = append(unique, key)
		}
	}
	sort.Strings(unique)

	held := make([]*sync.Mutex, 0, len(unique))
	for _, key := range unique {
		lock := r.get(key)
		lock.Lock()
		held = append(held, lock)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
