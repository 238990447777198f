package client_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/client"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedLedger rejects or fails transactions with the scripted errors in
// order, then accepts everything.
type scriptedLedger struct {
	errs  []error
	calls int
}

func (s *scriptedLedger) LatestBlockhash() solana.Hash {
	return solana.Hash{1}
}

func (s *scriptedLedger) ProcessTransaction(_ context.Context, tx *ledger.Transaction) (*ledger.TransactionResult, error) {
	s.calls++
	res := &ledger.TransactionResult{Signature: tx.Signature(), Slot: uint64(s.calls)}
	if s.calls <= len(s.errs) {
		err := s.errs[s.calls-1]
		if client.IsRetryable(err) {
			return nil, err
		}
		res.Err = err
		return res, err
	}
	return res, nil
}

func (s *scriptedLedger) GetAccount(context.Context, solana.PublicKey) (*ledger.Account, error) {
	return nil, ledger.ErrAccountNotFound
}

func (s *scriptedLedger) GetBalance(context.Context, solana.PublicKey) (uint64, error) {
	return 0, nil
}

func fastRetries(maxTries uint) client.Config {
	return client.Config{MaxTries: maxTries, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond, MaxElapsed: time.Second}
}

func memo(payer solana.PublicKey) []solana.Instruction {
	return []solana.Instruction{solana.NewInstruction(solana.SystemProgramID, solana.AccountMetaSlice{solana.Meta(payer).WRITE().SIGNER()}, []byte{2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})}
}

func TestSendRetriesRejections(t *testing.T) {
	l := &scriptedLedger{errs: []error{ledger.ErrAccountInUse, ledger.ErrBlockhashNotFound}}
	c := client.New(l, zap.NewNop(), fastRetries(5))
	payer := solana.NewWallet().PrivateKey

	res, err := c.Send(context.Background(), payer, memo(payer.PublicKey()))
	require.NoError(t, err)
	assert.Equal(t, 3, l.calls)
	assert.Equal(t, uint64(3), res.Slot)
}

func TestSendStopsOnExecutionFailure(t *testing.T) {
	l := &scriptedLedger{errs: []error{&ledger.InstructionError{Index: 0, Err: ledger.ErrInvalidArgument}}}
	c := client.New(l, zap.NewNop(), fastRetries(5))
	payer := solana.NewWallet().PrivateKey

	res, err := c.Send(context.Background(), payer, memo(payer.PublicKey()))
	assert.ErrorIs(t, err, ledger.ErrInvalidArgument)
	require.NotNil(t, res, "executed transactions report their result")
	assert.Equal(t, 1, l.calls)

	var ixErr *ledger.InstructionError
	assert.True(t, errors.As(err, &ixErr))
}

func TestSendGivesUpAfterMaxTries(t *testing.T) {
	l := &scriptedLedger{errs: []error{ledger.ErrAccountInUse, ledger.ErrAccountInUse, ledger.ErrAccountInUse}}
	c := client.New(l, zap.NewNop(), fastRetries(2))
	payer := solana.NewWallet().PrivateKey

	res, err := c.Send(context.Background(), payer, memo(payer.PublicKey()))
	assert.ErrorIs(t, err, ledger.ErrAccountInUse)
	assert.Nil(t, res)
	assert.Equal(t, 2, l.calls)
}

func TestSendHonoursCancellation(t *testing.T) {
	l := &scriptedLedger{errs: []error{ledger.ErrAccountInUse, ledger.ErrAccountInUse}}
	c := client.New(l, zap.NewNop(), fastRetries(0))
	payer := solana.NewWallet().PrivateKey

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Send(ctx, payer, memo(payer.PublicKey()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, l.calls, 1)
}

func TestSendSigningFailureIsPermanent(t *testing.T) {
	l := &scriptedLedger{}
	c := client.New(l, zap.NewNop(), fastRetries(5))
	payer := solana.NewWallet().PrivateKey
	other := solana.NewWallet().PublicKey()

	ixs := []solana.Instruction{solana.NewInstruction(solana.SystemProgramID, solana.AccountMetaSlice{
		solana.Meta(payer.PublicKey()).WRITE().SIGNER(),
		solana.Meta(other).WRITE().SIGNER(),
	}, []byte{2, 0, 0, 0})}
	_, err := c.Send(context.Background(), payer, ixs)
	assert.ErrorContains(t, err, "failed to sign transaction")
	assert.Zero(t, l.calls)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, client.IsRetryable(ledger.ErrAccountInUse))
	assert.True(t, client.IsRetryable(ledger.ErrBlockhashNotFound))
	assert.False(t, client.IsRetryable(ledger.ErrAlreadyProcessed))
	assert.False(t, client.IsRetryable(ledger.ErrSignatureFailure))
}
