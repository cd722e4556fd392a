package service

import (
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

const lockStripes = 64

// stripedLocks serializes work per cart id with a fixed number of mutexes.
// Distinct carts may share a stripe; that only costs throughput.
type stripedLocks struct {
	stripes [lockStripes]sync.Mutex
}

func newStripedLocks() *stripedLocks {
	return &stripedLocks{}
}

// lock acquires the stripe of id and returns its unlock function.
func (l *stripedLocks) lock(id uuid.UUID) func() {
	h := fnv.New32a()
	_, _ = h.Write(id[:])
	mu := &l.stripes[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}
