// internal/anchor/accounts.go
package anchor

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
)

// Accounts returns the instruction accounts, failing when fewer than n were passed.
func Accounts(ic *ledger.InvokeContext, n int) ([]*ledger.AccountInfo, error) {
	infos := ic.Accounts()
	if len(infos) < n {
		return nil, ErrAccountNotEnoughKeys
	}
	return infos, nil
}

// Signer checks that the account signed the transaction.
func Signer(a *ledger.AccountInfo, name string) error {
	if !a.IsSigner {
		return ErrAccountNotSigner.WithAccount(name)
	}
	return nil
}

// Mut checks that the account was passed writable.
func Mut(a *ledger.AccountInfo, name string) error {
	if !a.IsWritable {
		return ErrConstraintMut.WithAccount(name)
	}
	return nil
}

// Address checks the account key.
func Address(a *ledger.AccountInfo, name string, want solana.PublicKey) error {
	if !a.Key.Equals(want) {
		return ErrConstraintAddress.WithAccount(name)
	}
	return nil
}

// ProgramAccount checks that a is the given program.
func ProgramAccount(a *ledger.AccountInfo, name string, id solana.PublicKey) error {
	if !a.Key.Equals(id) {
		return ErrInvalidProgramID.WithAccount(name)
	}
	return nil
}

// Optional maps the program-id placeholder to None.
func Optional(ic *ledger.InvokeContext, a *ledger.AccountInfo) Option[*ledger.AccountInfo] {
	if a.Key.Equals(ic.ProgramID()) {
		return None[*ledger.AccountInfo]()
	}
	return Some(a)
}

// Seeds checks that a is the program address derived from seeds. With a nil
// bump the canonical bump is searched for; otherwise the given bump is used.
// The bump in effect is returned.
func Seeds(ic *ledger.InvokeContext, a *ledger.AccountInfo, name string, seeds [][]byte, bump *uint8) (uint8, error) {
	var (
		addr solana.PublicKey
		b    uint8
		err  error
	)
	if bump == nil {
		addr, b, err = ic.FindProgramAddress(seeds)
	} else {
		b = *bump
		withBump := append(append([][]byte{}, seeds...), []byte{b})
		addr, err = ic.CreateProgramAddress(withBump)
	}
	if err != nil || !addr.Equals(a.Key) {
		return 0, ErrConstraintSeeds.WithAccount(name)
	}
	return b, nil
}

// Load checks owner and discriminator of a program account and decodes it into v.
func Load(a *ledger.AccountInfo, name string, owner solana.PublicKey, d Discriminator, v any) error {
	if !a.Owner().Equals(owner) {
		if a.IsUninitialized() {
			return ErrAccountNotInitialized.WithAccount(name)
		}
		return ErrAccountOwnedByWrongProgram.WithAccount(name)
	}
	if err := Deserialize(a.Data(), d, v); err != nil {
		if e, ok := AsError(err); ok {
			return e.WithAccount(name)
		}
		return err
	}
	return nil
}

// Save writes v behind its discriminator into the account data, which must
// already be large enough.
func Save(a *ledger.AccountInfo, name string, d Discriminator, v any) error {
	data, err := Serialize(d, v)
	if err != nil {
		return ErrAccountDidNotSerialize.WithAccount(name)
	}
	if len(data) > len(a.Data()) {
		return ErrAccountDidNotSerialize.WithAccount(name)
	}
	copy(a.Data(), data)
	return nil
}

// InitAccount creates target as a rent-exempt account of space bytes owned
// by the executing program, funded by payer. signerSeeds carry the target's
// seeds when it is a program address.
func InitAccount(ic *ledger.InvokeContext, payer, target *ledger.AccountInfo, space uint64, signerSeeds ...[][]byte) error {
	lamports := ic.Rent().MinimumBalance(int(space))
	ix, err := system.NewCreateAccountInstruction(lamports, space, ic.ProgramID(), payer.Key, target.Key).ValidateAndBuild()
	if err != nil {
		return fmt.Errorf("failed to build create account instruction: %w", err)
	}
	return ic.InvokeSigned(ix, signerSeeds...)
}

// DecodeArgs decodes borsh instruction arguments.
func DecodeArgs(args []byte, v any) error {
	if err := bin.NewBorshDecoder(args).Decode(v); err != nil {
		return ErrInstructionDidNotDeserialize
	}
	return nil
}
