// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/storage/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrClosed   = errors.New("storage is closed")
)

// Storage определяет интерфейс для хранилища состояния леджера
type Storage interface {
	// Аккаунты
	GetAccount(ctx context.Context, key solana.PublicKey) (*models.Account, error)

	// Commit atomically applies account changes and records the transaction.
	// A nil account in changes deletes the key. record may be nil.
	Commit(ctx context.Context, changes map[solana.PublicKey]*models.Account, record *models.Transaction) error

	// Транзакции
	GetTransaction(ctx context.Context, signature string) (*models.Transaction, error)

	Close() error
}
