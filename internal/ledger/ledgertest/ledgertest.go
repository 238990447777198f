// internal/ledger/ledgertest/ledgertest.go
package ledgertest

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/computebudget"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/system"
	"github.com/rovshanmuradov/candy-launchpad/internal/storage/memory"
	"github.com/stretchr/testify/require"
)

// New returns an in-memory ledger with the system and compute budget
// programs plus the given ones registered.
func New(t testing.TB, programs ...ledger.Program) *ledger.Ledger {
	t.Helper()
	l := ledger.New(memory.New())
	Register(t, l, programs...)
	return l
}

// Register adds the builtin programs and the given ones to l.
func Register(t testing.TB, l *ledger.Ledger, programs ...ledger.Program) {
	t.Helper()
	builtins := []ledger.Program{system.New(), computebudget.New()}
	require.NoError(t, l.Register(context.Background(), append(builtins, programs...)...))
}

// Wallet creates a keypair funded with lamports.
func Wallet(t testing.TB, l *ledger.Ledger, lamports uint64) solana.PrivateKey {
	t.Helper()
	key := solana.NewWallet().PrivateKey
	if lamports > 0 {
		require.NoError(t, l.Airdrop(context.Background(), key.PublicKey(), lamports))
	}
	return key
}

// Send signs ixs with payer and signers, processes the transaction and
// advances the slot so an identical transaction can be sent again.
func Send(t testing.TB, l *ledger.Ledger, payer solana.PrivateKey, ixs []solana.Instruction, signers ...solana.PrivateKey) (*ledger.TransactionResult, error) {
	t.Helper()
	tx, err := ledger.NewTransaction(ixs, l.LatestBlockhash(), payer.PublicKey())
	require.NoError(t, err)
	require.NoError(t, tx.Sign(append([]solana.PrivateKey{payer}, signers...)...))

	res, err := l.ProcessTransaction(context.Background(), tx)
	l.AdvanceSlot()
	return res, err
}

// Balance returns the lamports held by key.
func Balance(t testing.TB, l *ledger.Ledger, key solana.PublicKey) uint64 {
	t.Helper()
	balance, err := l.GetBalance(context.Background(), key)
	require.NoError(t, err)
	return balance
}

// Account returns the stored account, failing the test when it is missing.
func Account(t testing.TB, l *ledger.Ledger, key solana.PublicKey) *ledger.Account {
	t.Helper()
	acc, err := l.GetAccount(context.Background(), key)
	require.NoError(t, err)
	return acc
}
