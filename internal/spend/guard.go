package spend

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// guard serializes operations per permission hash. Two concurrent
// status-check-then-spend sequences against the same permission could both
// observe a stale remaining allowance and jointly overspend it; holding
// the permission's lock across the whole sequence closes that gap.
type guard struct {
	mu    sync.Mutex
	locks map[common.Hash]*guardEntry
}

type guardEntry struct {
	mu   sync.Mutex
	refs int
}

func newGuard() *guard {
	return &guard{locks: make(map[common.Hash]*guardEntry)}
}

// lock acquires the per-hash mutex and returns its release function.
// Entries are reference counted so the map does not grow with every hash
// ever seen.
func (g *guard) lock(hash common.Hash) (unlock func()) {
	g.mu.Lock()
	entry, ok := g.locks[hash]
	if !ok {
		entry = &guardEntry{}
		g.locks[hash] = entry
	}
	entry.refs++
	g.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		g.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(g.locks, hash)
		}
		g.mu.Unlock()
	}
}
