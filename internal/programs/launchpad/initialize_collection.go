// internal/programs/launchpad/initialize_collection.go
package launchpad

import (
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/anchor"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/mplcore"
)

type InitializeCollectionArgs struct {
	Name string
	URI  string
}

type initializeCollectionAccounts struct {
	collection      *ledger.AccountInfo
	updateAuthority anchor.Option[*ledger.AccountInfo]
	payer           *ledger.AccountInfo
}

func loadInitializeCollectionAccounts(ic *ledger.InvokeContext) (*initializeCollectionAccounts, error) {
	infos, err := anchor.Accounts(ic, 5)
	if err != nil {
		return nil, err
	}
	a := &initializeCollectionAccounts{
		collection:      infos[0],
		updateAuthority: anchor.Optional(ic, infos[1]),
		payer:           infos[2],
	}

	checks := []error{
		anchor.Mut(a.collection, "collection"),
		anchor.Signer(a.collection, "collection"),
		anchor.Mut(a.payer, "payer"),
		anchor.Signer(a.payer, "payer"),
		anchor.ProgramAccount(infos[3], "system_program", solana.SystemProgramID),
		anchor.Address(infos[4], "mpl_core_program", mplcore.ProgramID),
	}
	for _, err := range checks {
		if err != nil {
			return nil, err
		}
	}
	return a, nil
}

// initializeCollection creates an MPL Core collection. Without an update
// authority account MPL Core makes the payer the authority.
func initializeCollection(ic *ledger.InvokeContext, raw []byte) error {
	var args InitializeCollectionArgs
	if err := anchor.DecodeArgs(raw, &args); err != nil {
		return err
	}
	accounts, err := loadInitializeCollectionAccounts(ic)
	if err != nil {
		return err
	}

	cpiAccounts := mplcore.CreateCollectionV2Accounts{
		Collection: accounts.collection.Key,
		Payer:      accounts.payer.Key,
	}
	if ua, ok := accounts.updateAuthority.Get(); ok {
		cpiAccounts.UpdateAuthority = ua.Key
	}
	ix, err := mplcore.NewCreateCollectionV2Instruction(cpiAccounts, mplcore.CreateCollectionV2Args{
		Name: args.Name,
		URI:  args.URI,
	})
	if err != nil {
		return err
	}
	return ic.Invoke(ix)
}
