package ledger_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionSigners(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	extra := solana.NewWallet().PrivateKey
	program := solana.NewWallet().PublicKey()

	ixs := []solana.Instruction{
		solana.NewInstruction(program, solana.AccountMetaSlice{
			solana.Meta(extra.PublicKey()).SIGNER(),
			solana.Meta(payer.PublicKey()).WRITE().SIGNER(),
		}, []byte{1}),
		solana.NewInstruction(program, solana.AccountMetaSlice{
			solana.Meta(extra.PublicKey()).SIGNER(),
		}, []byte{2}),
	}
	tx, err := ledger.NewTransaction(ixs, solana.Hash{9}, payer.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, []solana.PublicKey{payer.PublicKey(), extra.PublicKey()}, tx.Signers())

	assert.Error(t, tx.Sign(payer), "extra signer key is missing")
	require.NoError(t, tx.Sign(extra, payer, solana.NewWallet().PrivateKey))
	require.Len(t, tx.Signatures, 2)
	assert.Equal(t, tx.Signatures[0], tx.Signature())
	assert.NoError(t, tx.VerifySignatures())

	// Any change to the message invalidates the signatures.
	tx.RecentBlockhash = solana.Hash{8}
	assert.ErrorIs(t, tx.VerifySignatures(), ledger.ErrSignatureFailure)
}
