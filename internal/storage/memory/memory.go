// internal/storage/memory/memory.go
package memory

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/storage"
	"github.com/rovshanmuradov/candy-launchpad/internal/storage/models"
)

// Store keeps ledger state in process memory.
type Store struct {
	mu           sync.RWMutex
	accounts     map[solana.PublicKey]*models.Account
	transactions map[string]*models.Transaction
	closed       bool
}

var _ storage.Storage = (*Store)(nil)

func New() *Store {
	return &Store{
		accounts:     make(map[solana.PublicKey]*models.Account),
		transactions: make(map[string]*models.Transaction),
	}
}

func (s *Store) GetAccount(_ context.Context, key solana.PublicKey) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	acc, ok := s.accounts[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return acc.Clone(), nil
}

func (s *Store) Commit(ctx context.Context, changes map[solana.PublicKey]*models.Account, record *models.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	for key, acc := range changes {
		if acc == nil {
			delete(s.accounts, key)
			continue
		}
		s.accounts[key] = acc.Clone()
	}
	if record != nil {
		rec := *record
		rec.Logs = append([]string(nil), record.Logs...)
		s.transactions[record.Signature] = &rec
	}
	return nil
}

func (s *Store) GetTransaction(_ context.Context, signature string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	rec, ok := s.transactions[signature]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *rec
	out.Logs = append([]string(nil), rec.Logs...)
	return &out, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
