// internal/client/launch.go
package client

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/computebudget"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/launchpad"
	"go.uber.org/zap"
)

// CollectionRequest creates a collection. A zero UpdateAuthority makes the
// payer the update authority.
type CollectionRequest struct {
	Collection      solana.PrivateKey
	UpdateAuthority solana.PublicKey
	Name            string
	URI             string
}

// StoreRequest initializes the candy store of Collection. A zero Pass means
// no platform pass is presented.
type StoreRequest struct {
	Collection    solana.PublicKey
	Pass          solana.PublicKey
	Name          string
	URL           string
	ManifestID    string
	NumberOfItems uint64
}

// Receipt describes a confirmed candy store initialization.
type Receipt struct {
	Signature    solana.Signature
	Slot         uint64
	Collection   solana.PublicKey
	CandyStore   solana.PublicKey
	ComputeUnits uint64
	// FeePaid is the treasury fee implied by the settings and the pass at
	// submission time.
	FeePaid uint64
	Events  []launchpad.CreateCandyStoreEvent
}

func (c *Client) collectionInstruction(payer solana.PublicKey, req CollectionRequest) (solana.Instruction, error) {
	if len(req.Collection) == 0 {
		return nil, fmt.Errorf("collection keypair is required")
	}
	return launchpad.NewInitializeCollectionInstruction(launchpad.InitializeCollectionAccounts{
		Collection:      req.Collection.PublicKey(),
		UpdateAuthority: req.UpdateAuthority,
		Payer:           payer,
	}, launchpad.InitializeCollectionArgs{Name: req.Name, URI: req.URI})
}

// storeInstruction builds initialize_candy_store against the current
// settings and returns the fee it is expected to charge.
func (c *Client) storeInstruction(ctx context.Context, owner solana.PublicKey, req StoreRequest) (solana.Instruction, uint64, error) {
	settings, err := c.Settings(ctx)
	if err != nil {
		return nil, 0, err
	}

	fee := settings.FeeFor(nil)
	if !req.Pass.IsZero() {
		pass, err := c.Asset(ctx, req.Pass)
		if err != nil {
			// the program rejects the pass; nothing is charged
			c.logger.Debug("Pass is not a readable asset", zap.String("pass", req.Pass.String()), zap.Error(err))
			fee = 0
		} else {
			fee = settings.FeeFor(pass)
		}
	}

	ix, err := launchpad.NewInitializeCandyStoreInstruction(launchpad.InitializeCandyStoreAccounts{
		Collection:              req.Collection,
		Owner:                   owner,
		Treasury:                settings.Treasury,
		SettingsCollection:      settings.Collection,
		SettingsCollectionAsset: req.Pass,
	}, launchpad.InitializeCandyStoreArgs{
		Name:          req.Name,
		URL:           req.URL,
		ManifestID:    req.ManifestID,
		NumberOfItems: req.NumberOfItems,
	})
	if err != nil {
		return nil, 0, err
	}
	return ix, fee, nil
}

func (c *Client) receipt(res *ledger.TransactionResult, collection solana.PublicKey, fee uint64) (*Receipt, error) {
	candyStore, _, err := launchpad.FindCandyStoreAddress(collection)
	if err != nil {
		return nil, err
	}
	events, err := launchpad.ParseCreateCandyStoreEvents(res.Logs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode events of %s: %w", res.Signature, err)
	}
	return &Receipt{
		Signature:    res.Signature,
		Slot:         res.Slot,
		Collection:   collection,
		CandyStore:   candyStore,
		ComputeUnits: res.ComputeUnitsConsumed,
		FeePaid:      fee,
		Events:       events,
	}, nil
}

// CreateCollection creates an MPL Core collection through the launchpad.
func (c *Client) CreateCollection(ctx context.Context, payer solana.PrivateKey, req CollectionRequest) (*ledger.TransactionResult, error) {
	ix, err := c.collectionInstruction(payer.PublicKey(), req)
	if err != nil {
		return nil, err
	}
	res, err := c.Send(ctx, payer, []solana.Instruction{ix}, req.Collection)
	if err != nil {
		return res, fmt.Errorf("initialize_collection failed: %w", err)
	}
	c.logger.Info("Collection created",
		zap.String("collection", req.Collection.PublicKey().String()),
		zap.String("signature", res.Signature.String()))
	return res, nil
}

// InitializeCandyStore creates the candy store of an existing collection.
// The owner must be the collection's update authority.
func (c *Client) InitializeCandyStore(ctx context.Context, owner solana.PrivateKey, req StoreRequest) (*Receipt, error) {
	ix, fee, err := c.storeInstruction(ctx, owner.PublicKey(), req)
	if err != nil {
		return nil, err
	}
	res, err := c.Send(ctx, owner, []solana.Instruction{ix})
	if err != nil {
		return nil, fmt.Errorf("initialize_candy_store failed: %w", err)
	}
	receipt, err := c.receipt(res, req.Collection, fee)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Candy store initialized",
		zap.String("candy_store", receipt.CandyStore.String()),
		zap.String("collection", req.Collection.String()),
		zap.Uint64("fee", fee),
		zap.String("signature", res.Signature.String()))
	return receipt, nil
}

// LaunchInOneTransaction creates the collection and its candy store
// atomically under a raised compute limit. store.Collection is taken
// from coll.
func (c *Client) LaunchInOneTransaction(ctx context.Context, owner solana.PrivateKey, coll CollectionRequest, store StoreRequest) (*Receipt, error) {
	budget, err := computebudget.BuildInstructions(computebudget.LaunchUnits, 0)
	if err != nil {
		return nil, err
	}
	collectionIx, err := c.collectionInstruction(owner.PublicKey(), coll)
	if err != nil {
		return nil, err
	}
	store.Collection = coll.Collection.PublicKey()
	storeIx, fee, err := c.storeInstruction(ctx, owner.PublicKey(), store)
	if err != nil {
		return nil, err
	}

	ixs := append(budget, collectionIx, storeIx)
	res, err := c.Send(ctx, owner, ixs, coll.Collection)
	if err != nil {
		return nil, fmt.Errorf("launch failed: %w", err)
	}
	receipt, err := c.receipt(res, store.Collection, fee)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Launched in one transaction",
		zap.String("candy_store", receipt.CandyStore.String()),
		zap.String("collection", store.Collection.String()),
		zap.Uint64("compute_units", res.ComputeUnitsConsumed),
		zap.String("signature", res.Signature.String()))
	return receipt, nil
}
