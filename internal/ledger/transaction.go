// internal/ledger/transaction.go
package ledger

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Transaction is an ordered list of instructions executed atomically, paid
// for by FeePayer and bound to a recent blockhash.
type Transaction struct {
	FeePayer        solana.PublicKey
	RecentBlockhash solana.Hash
	Instructions    []solana.Instruction
	// Signatures are aligned with Signers().
	Signatures []solana.Signature
}

type messageAccount struct {
	PublicKey  solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

type messageInstruction struct {
	ProgramID solana.PublicKey
	Accounts  []messageAccount
	Data      []byte
}

type message struct {
	FeePayer        solana.PublicKey
	RecentBlockhash solana.Hash
	Instructions    []messageInstruction
}

// NewTransaction assembles an unsigned transaction.
func NewTransaction(instructions []solana.Instruction, blockhash solana.Hash, payer solana.PublicKey) (*Transaction, error) {
	if len(instructions) == 0 {
		return nil, ErrEmptyTransaction
	}
	return &Transaction{
		FeePayer:        payer,
		RecentBlockhash: blockhash,
		Instructions:    instructions,
	}, nil
}

// Signers returns the keys that must sign: the fee payer first, then every
// signer account in instruction order, without duplicates.
func (tx *Transaction) Signers() []solana.PublicKey {
	signers := []solana.PublicKey{tx.FeePayer}
	seen := map[solana.PublicKey]struct{}{tx.FeePayer: {}}
	for _, ix := range tx.Instructions {
		for _, meta := range ix.Accounts() {
			if !meta.IsSigner {
				continue
			}
			if _, ok := seen[meta.PublicKey]; ok {
				continue
			}
			seen[meta.PublicKey] = struct{}{}
			signers = append(signers, meta.PublicKey)
		}
	}
	return signers
}

// Message returns the bytes covered by the signatures.
func (tx *Transaction) Message() ([]byte, error) {
	msg := message{
		FeePayer:        tx.FeePayer,
		RecentBlockhash: tx.RecentBlockhash,
		Instructions:    make([]messageInstruction, 0, len(tx.Instructions)),
	}
	for i, ix := range tx.Instructions {
		data, err := ix.Data()
		if err != nil {
			return nil, fmt.Errorf("failed to encode instruction %d: %w", i, err)
		}
		metas := ix.Accounts()
		accounts := make([]messageAccount, 0, len(metas))
		for _, meta := range metas {
			accounts = append(accounts, messageAccount{
				PublicKey:  meta.PublicKey,
				IsSigner:   meta.IsSigner,
				IsWritable: meta.IsWritable,
			})
		}
		msg.Instructions = append(msg.Instructions, messageInstruction{
			ProgramID: ix.ProgramID(),
			Accounts:  accounts,
			Data:      data,
		})
	}

	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(&msg); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return buf.Bytes(), nil
}

// Sign signs the message with every required signer. keys may contain extra
// keys; a missing one is an error.
func (tx *Transaction) Sign(keys ...solana.PrivateKey) error {
	msg, err := tx.Message()
	if err != nil {
		return err
	}

	byPub := make(map[solana.PublicKey]solana.PrivateKey, len(keys))
	for _, key := range keys {
		byPub[key.PublicKey()] = key
	}

	signers := tx.Signers()
	signatures := make([]solana.Signature, len(signers))
	for i, signer := range signers {
		key, ok := byPub[signer]
		if !ok {
			return fmt.Errorf("missing private key for signer %s", signer)
		}
		sig, err := key.Sign(msg)
		if err != nil {
			return fmt.Errorf("failed to sign for %s: %w", signer, err)
		}
		signatures[i] = sig
	}
	tx.Signatures = signatures
	return nil
}

// Signature returns the fee payer's signature, which identifies the transaction.
func (tx *Transaction) Signature() solana.Signature {
	if len(tx.Signatures) == 0 {
		return solana.Signature{}
	}
	return tx.Signatures[0]
}

// VerifySignatures checks that every required signer signed the message.
func (tx *Transaction) VerifySignatures() error {
	msg, err := tx.Message()
	if err != nil {
		return err
	}
	signers := tx.Signers()
	if len(tx.Signatures) != len(signers) {
		return ErrSignatureFailure
	}
	for i, signer := range signers {
		if !tx.Signatures[i].Verify(signer, msg) {
			return fmt.Errorf("%w: %s", ErrSignatureFailure, signer)
		}
	}
	return nil
}
