package launchpad_test

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/anchor"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger/ledgertest"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/launchpad"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/mplcore"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sol         = 1_000_000_000
	platformFee = 1_000_000
)

// platform is a ledger with the launchpad settings in place: a treasury,
// a platform collection and its admin.
type platform struct {
	l                  *ledger.Ledger
	admin              solana.PrivateKey
	treasury           solana.PublicKey
	settingsCollection solana.PublicKey
}

func newPlatform(t *testing.T, fee uint64) *platform {
	t.Helper()
	p := &platform{
		l:        ledgertest.New(t, mplcore.New(), launchpad.New()),
		treasury: solana.NewWallet().PublicKey(),
	}
	p.admin = ledgertest.Wallet(t, p.l, 10*sol)

	collection := solana.NewWallet().PrivateKey
	ix, err := mplcore.NewCreateCollectionV2Instruction(mplcore.CreateCollectionV2Accounts{
		Collection: collection.PublicKey(),
		Payer:      p.admin.PublicKey(),
	}, mplcore.CreateCollectionV2Args{Name: "Platform Pass", URI: "https://example.com/pass.json"})
	require.NoError(t, err)
	_, err = ledgertest.Send(t, p.l, p.admin, []solana.Instruction{ix}, collection)
	require.NoError(t, err)
	p.settingsCollection = collection.PublicKey()

	settingsKey, bump, err := launchpad.FindSettingsAddress()
	require.NoError(t, err)
	data, err := launchpad.EncodeSettings(&launchpad.Settings{
		Treasury:       p.treasury,
		TransactionFee: fee,
		Collection:     p.settingsCollection,
		Bump:           bump,
	})
	require.NoError(t, err)
	require.NoError(t, p.l.SetAccount(context.Background(), settingsKey, &ledger.Account{
		Lamports: ledger.DefaultRent().MinimumBalance(len(data)),
		Data:     data,
		Owner:    launchpad.ProgramID,
	}))
	return p
}

// mintPass creates an asset owned by holder. Inside the platform collection
// it is a platform pass.
func (p *platform) mintPass(t *testing.T, holder solana.PublicKey, inPlatformCollection bool) solana.PublicKey {
	t.Helper()
	asset := solana.NewWallet().PrivateKey
	accounts := mplcore.CreateV2Accounts{
		Asset: asset.PublicKey(),
		Payer: p.admin.PublicKey(),
		Owner: holder,
	}
	if inPlatformCollection {
		accounts.Collection = p.settingsCollection
	}
	ix, err := mplcore.NewCreateV2Instruction(accounts, mplcore.CreateV2Args{Name: "Pass", URI: "https://example.com/p.json"})
	require.NoError(t, err)
	_, err = ledgertest.Send(t, p.l, p.admin, []solana.Instruction{ix}, asset)
	require.NoError(t, err)
	return asset.PublicKey()
}

func (p *platform) collectionIx(t *testing.T, collection, payer, updateAuthority solana.PublicKey) solana.Instruction {
	t.Helper()
	ix, err := launchpad.NewInitializeCollectionInstruction(launchpad.InitializeCollectionAccounts{
		Collection:      collection,
		UpdateAuthority: updateAuthority,
		Payer:           payer,
	}, launchpad.InitializeCollectionArgs{Name: "asd", URI: "test"})
	require.NoError(t, err)
	return ix
}

func (p *platform) createCollection(t *testing.T, payer solana.PrivateKey) solana.PublicKey {
	t.Helper()
	collection := solana.NewWallet().PrivateKey
	ix := p.collectionIx(t, collection.PublicKey(), payer.PublicKey(), solana.PublicKey{})
	_, err := ledgertest.Send(t, p.l, payer, []solana.Instruction{ix}, collection)
	require.NoError(t, err)
	return collection.PublicKey()
}

func (p *platform) storeIx(t *testing.T, collection, owner, pass solana.PublicKey) solana.Instruction {
	t.Helper()
	ix, err := launchpad.NewInitializeCandyStoreInstruction(launchpad.InitializeCandyStoreAccounts{
		Collection:              collection,
		Owner:                   owner,
		Treasury:                p.treasury,
		SettingsCollection:      p.settingsCollection,
		SettingsCollectionAsset: pass,
	}, launchpad.InitializeCandyStoreArgs{
		Name:          "Name",
		URL:           "url",
		ManifestID:    "manifest_id",
		NumberOfItems: 1,
	})
	require.NoError(t, err)
	return ix
}

func (p *platform) initStore(t *testing.T, owner solana.PrivateKey, collection, pass solana.PublicKey) (*ledger.TransactionResult, error) {
	t.Helper()
	return ledgertest.Send(t, p.l, owner, []solana.Instruction{p.storeIx(t, collection, owner.PublicKey(), pass)})
}

func (p *platform) treasuryBalance(t *testing.T) uint64 {
	return ledgertest.Balance(t, p.l, p.treasury)
}

func candyStoreAddress(t *testing.T, collection solana.PublicKey) solana.PublicKey {
	t.Helper()
	addr, _, err := launchpad.FindCandyStoreAddress(collection)
	require.NoError(t, err)
	return addr
}

func storeExists(t *testing.T, l *ledger.Ledger, collection solana.PublicKey) bool {
	t.Helper()
	_, err := l.GetAccount(context.Background(), candyStoreAddress(t, collection))
	if err != nil {
		require.ErrorIs(t, err, ledger.ErrAccountNotFound)
		return false
	}
	return true
}

func TestInitializeCandyStore(t *testing.T) {
	p := newPlatform(t, platformFee)
	owner := ledgertest.Wallet(t, p.l, sol)
	collection := p.createCollection(t, owner)
	ownerBefore := ledgertest.Balance(t, p.l, owner.PublicKey())
	collectionBefore := ledgertest.Balance(t, p.l, collection)

	res, err := p.initStore(t, owner, collection, solana.PublicKey{})
	require.NoError(t, err)

	storeKey := candyStoreAddress(t, collection)
	acc := ledgertest.Account(t, p.l, storeKey)
	assert.Equal(t, launchpad.ProgramID, acc.Owner)
	assert.Len(t, acc.Data, int(launchpad.CandyStoreSpace("Name", "url", "manifest_id", nil)))

	store, err := launchpad.DecodeCandyStore(acc.Data)
	require.NoError(t, err)
	_, bump, err := launchpad.FindCandyStoreAddress(collection)
	require.NoError(t, err)
	assert.Equal(t, owner.PublicKey(), store.Owner)
	assert.Equal(t, "Name", store.Name)
	assert.Equal(t, "url", store.URL)
	assert.Equal(t, "manifest_id", store.ManifestID)
	assert.Equal(t, uint64(1), store.NumberOfItems)
	assert.Zero(t, store.Minted)
	assert.Empty(t, store.Phases)
	assert.Equal(t, collection, store.Collection)
	assert.Equal(t, bump, store.Bump)

	// The fee reaches the treasury exactly; the owner also pays rent for
	// the store and for the plugin growth of the collection.
	assert.Equal(t, uint64(platformFee), p.treasuryBalance(t))
	grown := ledgertest.Balance(t, p.l, collection) - collectionBefore
	assert.Positive(t, grown)
	assert.Equal(t, ownerBefore-platformFee-acc.Lamports-grown, ledgertest.Balance(t, p.l, owner.PublicKey()))

	c, err := mplcore.DecodeCollection(ledgertest.Account(t, p.l, collection).Data)
	require.NoError(t, err)
	assert.Equal(t, []solana.PublicKey{storeKey}, c.UpdateDelegates())
	rec, ok := c.Plugin(mplcore.PluginTypeUpdateDelegate)
	require.True(t, ok)
	assert.Equal(t, mplcore.PluginAuthorityUpdateAuthority(), rec.Authority)

	events, err := launchpad.ParseCreateCandyStoreEvents(res.Logs)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, launchpad.CreateCandyStoreEvent{
		CandyStore:    storeKey,
		Owner:         owner.PublicKey(),
		Collection:    collection,
		Name:          "Name",
		URL:           "url",
		ManifestID:    "manifest_id",
		NumberOfItems: 1,
	}, events[0])
	assert.Contains(t, res.Logs, "Program log: Instruction: InitializeCandyStore")
}

func TestInitializeCandyStoreTwiceFails(t *testing.T) {
	p := newPlatform(t, platformFee)
	owner := ledgertest.Wallet(t, p.l, sol)
	collection := p.createCollection(t, owner)

	_, err := p.initStore(t, owner, collection, solana.PublicKey{})
	require.NoError(t, err)
	treasury := p.treasuryBalance(t)
	balance := ledgertest.Balance(t, p.l, owner.PublicKey())

	res, err := p.initStore(t, owner, collection, solana.PublicKey{})
	require.Error(t, err)
	assert.ErrorIs(t, err, system.ErrAccountAlreadyInUse)
	storeKey := candyStoreAddress(t, collection)
	assert.Contains(t, res.Logs, "Program log: Create Account: account Address { address: "+storeKey.String()+", base: None } already in use")

	// The fee transfer of the failed attempt is rolled back.
	assert.Equal(t, treasury, p.treasuryBalance(t))
	assert.Equal(t, balance, ledgertest.Balance(t, p.l, owner.PublicKey()))
}

func TestInitializeCandyStoreRejectsForeignCollection(t *testing.T) {
	p := newPlatform(t, platformFee)
	owner := ledgertest.Wallet(t, p.l, sol)
	notCore := ledgertest.Wallet(t, p.l, sol).PublicKey()
	balance := ledgertest.Balance(t, p.l, owner.PublicKey())

	res, err := p.initStore(t, owner, notCore, solana.PublicKey{})
	require.Error(t, err)
	assert.ErrorIs(t, err, launchpad.ErrCollectionNotMplCore)
	assert.Contains(t, res.Logs, "Program log: AnchorError occurred. Error Code: CollectionNotMplCore. Error Number: 6000. Error Message: Collection is not an MPL Core collection.")

	anchorErr, ok := anchor.ErrorFromLogs(res.Logs)
	require.True(t, ok)
	assert.Equal(t, uint32(6000), anchorErr.Code)

	assert.Zero(t, p.treasuryBalance(t))
	assert.Equal(t, balance, ledgertest.Balance(t, p.l, owner.PublicKey()))
	assert.False(t, storeExists(t, p.l, notCore))
}

func TestInitializeCandyStoreRejectsForeignPass(t *testing.T) {
	p := newPlatform(t, platformFee)
	owner := ledgertest.Wallet(t, p.l, sol)
	someoneElse := solana.NewWallet().PublicKey()
	collection := p.createCollection(t, owner)

	tests := []struct {
		name                 string
		inPlatformCollection bool
	}{
		{"platform pass", true},
		{"unrelated asset", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pass := p.mintPass(t, someoneElse, tt.inPlatformCollection)
			res, err := p.initStore(t, owner, collection, pass)
			require.Error(t, err)
			assert.ErrorIs(t, err, launchpad.ErrNotTheOwnerOfCollection)
			assert.Contains(t, res.Logs, "Program log: AnchorError occurred. Error Code: NotTheOwnerOfCollection. Error Number: 6001. Error Message: Not the owner of the collection asset.")
			assert.Zero(t, p.treasuryBalance(t))
			assert.False(t, storeExists(t, p.l, collection))
		})
	}
}

func TestInitializeCandyStoreFeeGate(t *testing.T) {
	tests := []struct {
		name    string
		pass    func(t *testing.T, p *platform, owner solana.PublicKey) solana.PublicKey
		charged bool
	}{
		{
			name:    "no pass",
			pass:    func(*testing.T, *platform, solana.PublicKey) solana.PublicKey { return solana.PublicKey{} },
			charged: true,
		},
		{
			name: "asset outside the platform collection",
			pass: func(t *testing.T, p *platform, owner solana.PublicKey) solana.PublicKey {
				return p.mintPass(t, owner, false)
			},
			charged: true,
		},
		{
			name: "platform collection as a plain address authority",
			pass: func(t *testing.T, p *platform, owner solana.PublicKey) solana.PublicKey {
				asset := solana.NewWallet().PrivateKey
				ix, err := mplcore.NewCreateV2Instruction(mplcore.CreateV2Accounts{
					Asset:           asset.PublicKey(),
					Payer:           p.admin.PublicKey(),
					Owner:           owner,
					UpdateAuthority: p.settingsCollection,
				}, mplcore.CreateV2Args{Name: "Lookalike", URI: "https://example.com/l.json"})
				require.NoError(t, err)
				_, err = ledgertest.Send(t, p.l, p.admin, []solana.Instruction{ix}, asset)
				require.NoError(t, err)

				info, err := p.l.GetAccount(context.Background(), asset.PublicKey())
				require.NoError(t, err)
				decoded, err := mplcore.DecodeAsset(info.Data)
				require.NoError(t, err)
				require.True(t, decoded.UpdateAuthority.Equals(mplcore.UpdateAuthorityAddress(p.settingsCollection)))
				return asset.PublicKey()
			},
			charged: true,
		},
		{
			name: "platform pass",
			pass: func(t *testing.T, p *platform, owner solana.PublicKey) solana.PublicKey {
				return p.mintPass(t, owner, true)
			},
			charged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPlatform(t, platformFee)
			owner := ledgertest.Wallet(t, p.l, sol)
			collection := p.createCollection(t, owner)
			pass := tt.pass(t, p, owner.PublicKey())

			_, err := p.initStore(t, owner, collection, pass)
			require.NoError(t, err)

			want := uint64(0)
			if tt.charged {
				want = platformFee
			}
			assert.Equal(t, want, p.treasuryBalance(t))
			assert.True(t, storeExists(t, p.l, collection))
		})
	}
}

func TestInitializeCandyStoreWithZeroFee(t *testing.T) {
	p := newPlatform(t, 0)
	owner := ledgertest.Wallet(t, p.l, sol)
	collection := p.createCollection(t, owner)

	_, err := p.initStore(t, owner, collection, solana.PublicKey{})
	require.NoError(t, err)
	assert.Zero(t, p.treasuryBalance(t))
}

func TestInitializeCandyStoreInsufficientFunds(t *testing.T) {
	p := newPlatform(t, 5*sol)
	owner := ledgertest.Wallet(t, p.l, sol)
	collection := p.createCollection(t, owner)

	_, err := p.initStore(t, owner, collection, solana.PublicKey{})
	require.Error(t, err)
	assert.Zero(t, p.treasuryBalance(t))
	assert.False(t, storeExists(t, p.l, collection))
}

func TestInitializeCandyStoreAccountConstraints(t *testing.T) {
	p := newPlatform(t, platformFee)
	owner := ledgertest.Wallet(t, p.l, sol)
	collection := p.createCollection(t, owner)

	t.Run("wrong treasury", func(t *testing.T) {
		ix, err := launchpad.NewInitializeCandyStoreInstruction(launchpad.InitializeCandyStoreAccounts{
			Collection:         collection,
			Owner:              owner.PublicKey(),
			Treasury:           owner.PublicKey(),
			SettingsCollection: p.settingsCollection,
		}, launchpad.InitializeCandyStoreArgs{Name: "n", URL: "u", ManifestID: "m", NumberOfItems: 1})
		require.NoError(t, err)

		res, err := ledgertest.Send(t, p.l, owner, []solana.Instruction{ix})
		assert.ErrorIs(t, err, anchor.ErrConstraintAddress)
		assert.Contains(t, res.Logs, "Program log: AnchorError caused by account: treasury_wallet. Error Code: ConstraintAddress. Error Number: 2012. Error Message: An address constraint was violated.")
	})

	t.Run("wrong settings collection", func(t *testing.T) {
		ix, err := launchpad.NewInitializeCandyStoreInstruction(launchpad.InitializeCandyStoreAccounts{
			Collection:         collection,
			Owner:              owner.PublicKey(),
			Treasury:           p.treasury,
			SettingsCollection: collection,
		}, launchpad.InitializeCandyStoreArgs{Name: "n", URL: "u", ManifestID: "m", NumberOfItems: 1})
		require.NoError(t, err)

		_, err = ledgertest.Send(t, p.l, owner, []solana.Instruction{ix})
		assert.ErrorIs(t, err, anchor.ErrConstraintAddress)
	})

	t.Run("pass from another program", func(t *testing.T) {
		_, err := p.initStore(t, owner, collection, owner.PublicKey())
		assert.ErrorIs(t, err, anchor.ErrAccountOwnedByWrongProgram)
	})

	assert.Zero(t, p.treasuryBalance(t))
	assert.False(t, storeExists(t, p.l, collection))
}

func TestInitializeCandyStoreRequiresCollectionAuthority(t *testing.T) {
	p := newPlatform(t, platformFee)
	creator := ledgertest.Wallet(t, p.l, sol)
	other := ledgertest.Wallet(t, p.l, sol)
	collection := p.createCollection(t, creator)

	_, err := p.initStore(t, other, collection, solana.PublicKey{})
	require.Error(t, err)
	assert.ErrorIs(t, err, mplcore.ErrInvalidAuthority)
	assert.Zero(t, p.treasuryBalance(t))
	assert.False(t, storeExists(t, p.l, collection))
}

func TestLaunchInOneTransaction(t *testing.T) {
	p := newPlatform(t, 100_000)
	owner := ledgertest.Wallet(t, p.l, sol)
	collection := solana.NewWallet().PrivateKey

	ixs := []solana.Instruction{
		p.collectionIx(t, collection.PublicKey(), owner.PublicKey(), solana.PublicKey{}),
		p.storeIx(t, collection.PublicKey(), owner.PublicKey(), solana.PublicKey{}),
	}
	res, err := ledgertest.Send(t, p.l, owner, ixs, collection)
	require.NoError(t, err)
	assert.Less(t, res.ComputeUnitsConsumed, ledger.DefaultComputeUnitLimit)

	assert.True(t, storeExists(t, p.l, collection.PublicKey()))
	assert.Equal(t, uint64(100_000), p.treasuryBalance(t))
}

func TestInitializeCollection(t *testing.T) {
	p := newPlatform(t, platformFee)
	payer := ledgertest.Wallet(t, p.l, sol)
	custom := solana.NewWallet().PublicKey()

	tests := []struct {
		name            string
		updateAuthority solana.PublicKey
		want            solana.PublicKey
	}{
		{"default authority", solana.PublicKey{}, payer.PublicKey()},
		{"custom authority", custom, custom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collection := solana.NewWallet().PrivateKey
			ix := p.collectionIx(t, collection.PublicKey(), payer.PublicKey(), tt.updateAuthority)
			_, err := ledgertest.Send(t, p.l, payer, []solana.Instruction{ix}, collection)
			require.NoError(t, err)

			acc := ledgertest.Account(t, p.l, collection.PublicKey())
			require.Equal(t, mplcore.ProgramID, acc.Owner)
			c, err := mplcore.DecodeCollection(acc.Data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.UpdateAuthority)
			assert.Equal(t, "asd", c.Name)
			assert.Equal(t, "test", c.URI)
		})
	}
}

func TestInitializeCollectionRequiresCollectionSignature(t *testing.T) {
	p := newPlatform(t, platformFee)
	payer := ledgertest.Wallet(t, p.l, sol)
	collection := solana.NewWallet().PublicKey()

	ix := p.collectionIx(t, collection, payer.PublicKey(), solana.PublicKey{})
	tx, err := ledger.NewTransaction([]solana.Instruction{ix}, p.l.LatestBlockhash(), payer.PublicKey())
	require.NoError(t, err)
	assert.Error(t, tx.Sign(payer))
}
