// internal/ledger/locks.go
package ledger

import (
	"sync"

	"github.com/gagliardetto/solana-go"
)

// lockTable implements account locking: one writer or many readers per key
// for the lifetime of a transaction. Conflicts fail fast.
type lockTable struct {
	mu      sync.Mutex
	writers map[solana.PublicKey]struct{}
	readers map[solana.PublicKey]int
}

func newLockTable() *lockTable {
	return &lockTable{
		writers: make(map[solana.PublicKey]struct{}),
		readers: make(map[solana.PublicKey]int),
	}
}

func (lt *lockTable) lock(writable, readonly []solana.PublicKey) bool {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	for _, key := range writable {
		if _, ok := lt.writers[key]; ok {
			return false
		}
		if lt.readers[key] > 0 {
			return false
		}
	}
	for _, key := range readonly {
		if _, ok := lt.writers[key]; ok {
			return false
		}
	}

	for _, key := range writable {
		lt.writers[key] = struct{}{}
	}
	for _, key := range readonly {
		lt.readers[key]++
	}
	return true
}

func (lt *lockTable) unlock(writable, readonly []solana.PublicKey) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	for _, key := range writable {
		delete(lt.writers, key)
	}
	for _, key := range readonly {
		if lt.readers[key] <= 1 {
			delete(lt.readers, key)
			continue
		}
		lt.readers[key]--
	}
}
