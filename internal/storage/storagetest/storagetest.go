// Package storagetest holds behaviour checks shared by every Storage backend.
package storagetest

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/storage"
	"github.com/rovshanmuradov/candy-launchpad/internal/storage/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh, empty store.
func Run(t *testing.T, s storage.Storage) {
	t.Helper()
	ctx := context.Background()

	key := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	t.Run("missing account", func(t *testing.T) {
		_, err := s.GetAccount(ctx, key)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("commit and read back", func(t *testing.T) {
		acc := &models.Account{Lamports: 42, Data: []byte{1, 2, 3}, Owner: owner}
		rec := &models.Transaction{
			Signature:    "sig-1",
			Slot:         7,
			Status:       models.StatusSuccess,
			Logs:         []string{"Program log: hello"},
			ComputeUnits: 1234,
		}
		require.NoError(t, s.Commit(ctx, map[solana.PublicKey]*models.Account{key: acc}, rec))

		got, err := s.GetAccount(ctx, key)
		require.NoError(t, err)
		assert.True(t, acc.Equal(got))

		// mutating the returned copy must not leak into the store
		got.Data[0] = 9
		again, err := s.GetAccount(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, byte(1), again.Data[0])

		gotRec, err := s.GetTransaction(ctx, "sig-1")
		require.NoError(t, err)
		assert.Equal(t, rec.Slot, gotRec.Slot)
		assert.Equal(t, rec.Logs, gotRec.Logs)
		assert.Equal(t, rec.ComputeUnits, gotRec.ComputeUnits)
	})

	t.Run("nil deletes", func(t *testing.T) {
		require.NoError(t, s.Commit(ctx, map[solana.PublicKey]*models.Account{key: nil}, nil))
		_, err := s.GetAccount(ctx, key)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("missing transaction", func(t *testing.T) {
		_, err := s.GetTransaction(ctx, "unknown")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := s.Commit(cctx, map[solana.PublicKey]*models.Account{key: {Lamports: 1}}, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
