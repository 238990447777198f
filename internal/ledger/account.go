// internal/ledger/account.go
package ledger

import (
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/storage/models"
)

// Account is the stored state of an address.
type Account = models.Account

// NativeLoaderID owns the accounts of programs registered with the ledger.
var NativeLoaderID = solana.MustPublicKeyFromBase58("NativeLoader1111111111111111111111111111111")

// AccountInfo is a program's view of one account in the current instruction.
// Mutations go straight to the transaction overlay; the runtime checks them
// against the account's ownership and privileges when the program returns.
type AccountInfo struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool

	account *Account
}

func (a *AccountInfo) Lamports() uint64 {
	return a.account.Lamports
}

func (a *AccountInfo) Owner() solana.PublicKey {
	return a.account.Owner
}

// Data returns the account data. The slice is live; writes are visible to
// the runtime immediately.
func (a *AccountInfo) Data() []byte {
	return a.account.Data
}

func (a *AccountInfo) Executable() bool {
	return a.account.Executable
}

func (a *AccountInfo) SetLamports(lamports uint64) {
	a.account.Lamports = lamports
}

// SetData replaces the account data, resizing it if needed.
func (a *AccountInfo) SetData(data []byte) {
	a.account.Data = data
}

func (a *AccountInfo) Assign(owner solana.PublicKey) {
	a.account.Owner = owner
}

// IsUninitialized reports whether the account holds nothing: no lamports,
// no data, owned by the system program.
func (a *AccountInfo) IsUninitialized() bool {
	return a.account.Lamports == 0 &&
		len(a.account.Data) == 0 &&
		a.account.Owner.Equals(solana.SystemProgramID)
}

// Snapshot returns a copy of the current account state.
func (a *AccountInfo) Snapshot() *Account {
	return a.account.Clone()
}
