// internal/client/accounts.go
package client

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/launchpad"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/mplcore"
)

// fetchOwned returns the data of key after checking its owner.
func (c *Client) fetchOwned(ctx context.Context, key, owner solana.PublicKey, what string) ([]byte, error) {
	acc, err := c.ledger.GetAccount(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s account: %w", what, err)
	}
	if !acc.Owner.Equals(owner) {
		return nil, fmt.Errorf("%s account has incorrect owner: expected %s, got %s", what, owner, acc.Owner)
	}
	return acc.Data, nil
}

// Settings fetches the platform settings record.
func (c *Client) Settings(ctx context.Context) (*launchpad.Settings, error) {
	key, _, err := launchpad.FindSettingsAddress()
	if err != nil {
		return nil, err
	}
	data, err := c.fetchOwned(ctx, key, launchpad.ProgramID, "settings")
	if err != nil {
		return nil, err
	}
	return launchpad.DecodeSettings(data)
}

// CandyStore fetches the candy store bound to collection.
func (c *Client) CandyStore(ctx context.Context, collection solana.PublicKey) (*launchpad.CandyStore, error) {
	key, _, err := launchpad.FindCandyStoreAddress(collection)
	if err != nil {
		return nil, err
	}
	data, err := c.fetchOwned(ctx, key, launchpad.ProgramID, "candy store")
	if err != nil {
		return nil, err
	}
	return launchpad.DecodeCandyStore(data)
}

// Collection fetches an MPL Core collection.
func (c *Client) Collection(ctx context.Context, key solana.PublicKey) (*mplcore.Collection, error) {
	data, err := c.fetchOwned(ctx, key, mplcore.ProgramID, "collection")
	if err != nil {
		return nil, err
	}
	return mplcore.DecodeCollection(data)
}

// Asset fetches an MPL Core asset.
func (c *Client) Asset(ctx context.Context, key solana.PublicKey) (*mplcore.Asset, error) {
	data, err := c.fetchOwned(ctx, key, mplcore.ProgramID, "asset")
	if err != nil {
		return nil, err
	}
	return mplcore.DecodeAsset(data)
}

// Balance returns the lamports held by key.
func (c *Client) Balance(ctx context.Context, key solana.PublicKey) (uint64, error) {
	return c.ledger.GetBalance(ctx, key)
}
