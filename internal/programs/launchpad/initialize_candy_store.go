// internal/programs/launchpad/initialize_candy_store.go
package launchpad

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/rovshanmuradov/candy-launchpad/internal/anchor"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/mplcore"
)

type InitializeCandyStoreArgs struct {
	Name          string
	URL           string
	ManifestID    string
	NumberOfItems uint64
}

type initializeCandyStoreAccounts struct {
	collection         *ledger.AccountInfo
	owner              *ledger.AccountInfo
	candyStore         *ledger.AccountInfo
	candyStoreBump     uint8
	settings           Settings
	treasury           *ledger.AccountInfo
	settingsCollection *ledger.AccountInfo
	// pass is the holder's platform pass, when presented.
	pass anchor.Option[*mplcore.Asset]
}

// loadInitializeCandyStoreAccounts applies the account constraints in
// declaration order.
func loadInitializeCandyStoreAccounts(ic *ledger.InvokeContext) (*initializeCandyStoreAccounts, error) {
	infos, err := anchor.Accounts(ic, 9)
	if err != nil {
		return nil, err
	}
	a := &initializeCandyStoreAccounts{
		collection:         infos[0],
		owner:              infos[1],
		candyStore:         infos[2],
		treasury:           infos[4],
		settingsCollection: infos[5],
	}
	settingsInfo := infos[3]

	if err := anchor.Mut(a.collection, "collection"); err != nil {
		return nil, err
	}
	if err := anchor.Mut(a.owner, "owner"); err != nil {
		return nil, err
	}
	if err := anchor.Signer(a.owner, "owner"); err != nil {
		return nil, err
	}

	if err := anchor.Mut(a.candyStore, "candy_store"); err != nil {
		return nil, err
	}
	seeds := [][]byte{[]byte(CandyStoreSeed), a.collection.Key.Bytes()}
	if a.candyStoreBump, err = anchor.Seeds(ic, a.candyStore, "candy_store", seeds, nil); err != nil {
		return nil, err
	}

	if err := anchor.Load(settingsInfo, "settings", ProgramID, settingsDiscriminator, &a.settings); err != nil {
		return nil, err
	}
	if _, err := anchor.Seeds(ic, settingsInfo, "settings", [][]byte{[]byte(SettingsSeed)}, &a.settings.Bump); err != nil {
		return nil, err
	}

	if err := anchor.Mut(a.treasury, "treasury_wallet"); err != nil {
		return nil, err
	}
	if err := anchor.Address(a.treasury, "treasury_wallet", a.settings.Treasury); err != nil {
		return nil, err
	}
	if err := anchor.Address(a.settingsCollection, "settings_collection", a.settings.Collection); err != nil {
		return nil, err
	}

	if info, ok := anchor.Optional(ic, infos[6]).Get(); ok {
		if !info.Owner().Equals(mplcore.ProgramID) {
			return nil, anchor.ErrAccountOwnedByWrongProgram.WithAccount("settings_collection_asset")
		}
		asset, err := mplcore.DecodeAsset(info.Data())
		if err != nil {
			return nil, anchor.ErrAccountDidNotDeserialize.WithAccount("settings_collection_asset")
		}
		a.pass = anchor.Some(asset)
	}

	if err := anchor.Address(infos[7], "mpl_core_program", mplcore.ProgramID); err != nil {
		return nil, err
	}
	if err := anchor.ProgramAccount(infos[8], "system_program", solana.SystemProgramID); err != nil {
		return nil, err
	}
	return a, nil
}

// feeWaived reports whether the presented pass belongs to the platform collection.
func (a *initializeCandyStoreAccounts) feeWaived() bool {
	pass, ok := a.pass.Get()
	return ok && a.settings.Waives(pass)
}

// initializeCandyStore creates the candy store of a collection, charging
// the platform fee unless a platform pass is presented, and makes the store
// an update delegate of the collection.
func initializeCandyStore(ic *ledger.InvokeContext, raw []byte) error {
	var args InitializeCandyStoreArgs
	if err := anchor.DecodeArgs(raw, &args); err != nil {
		return err
	}
	accounts, err := loadInitializeCandyStoreAccounts(ic)
	if err != nil {
		return err
	}

	if !accounts.collection.Owner().Equals(mplcore.ProgramID) {
		return ErrCollectionNotMplCore
	}
	if pass, ok := accounts.pass.Get(); ok && !pass.Owner.Equals(accounts.owner.Key) {
		return ErrNotTheOwnerOfCollection
	}

	if !accounts.feeWaived() {
		ix, err := system.NewTransferInstruction(
			accounts.settings.TransactionFee,
			accounts.owner.Key,
			accounts.settings.Treasury,
		).ValidateAndBuild()
		if err != nil {
			return err
		}
		if err := ic.Invoke(ix); err != nil {
			return err
		}
	}

	storeSeeds := [][]byte{
		[]byte(CandyStoreSeed),
		accounts.collection.Key.Bytes(),
		{accounts.candyStoreBump},
	}
	space := CandyStoreSpace(args.Name, args.URL, args.ManifestID, nil)
	if err := anchor.InitAccount(ic, accounts.owner, accounts.candyStore, space, storeSeeds); err != nil {
		return err
	}
	store := CandyStore{
		Owner:         accounts.owner.Key,
		Name:          args.Name,
		URL:           args.URL,
		NumberOfItems: args.NumberOfItems,
		Minted:        0,
		ManifestID:    args.ManifestID,
		Collection:    accounts.collection.Key,
		Phases:        []Phase{},
		Bump:          accounts.candyStoreBump,
	}
	if err := anchor.Save(accounts.candyStore, "candy_store", candyStoreDiscriminator, &store); err != nil {
		return err
	}

	initAuthority := mplcore.PluginAuthorityUpdateAuthority()
	ix, err := mplcore.NewAddCollectionPluginV1Instruction(mplcore.AddCollectionPluginV1Accounts{
		Collection: accounts.collection.Key,
		Payer:      accounts.owner.Key,
		Authority:  accounts.owner.Key,
	}, mplcore.AddCollectionPluginV1Args{
		Plugin:        mplcore.NewUpdateDelegatePlugin(accounts.candyStore.Key),
		InitAuthority: &initAuthority,
	})
	if err != nil {
		return err
	}
	if err := ic.InvokeSigned(ix, storeSeeds); err != nil {
		return err
	}

	return anchor.Emit(ic, createCandyStoreEventName, &CreateCandyStoreEvent{
		CandyStore:    accounts.candyStore.Key,
		Owner:         accounts.owner.Key,
		Collection:    accounts.collection.Key,
		Name:          args.Name,
		URL:           args.URL,
		ManifestID:    args.ManifestID,
		NumberOfItems: args.NumberOfItems,
	})
}
