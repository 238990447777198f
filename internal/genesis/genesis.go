// internal/genesis/genesis.go
package genesis

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/computebudget"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/launchpad"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/mplcore"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/system"
	"go.uber.org/zap"
)

// Sender submits signed transactions; *client.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, payer solana.PrivateKey, ixs []solana.Instruction, signers ...solana.PrivateKey) (*ledger.TransactionResult, error)
}

// Programs returns every program the launchpad needs on the ledger.
func Programs() []ledger.Program {
	return []ledger.Program{
		system.New(),
		computebudget.New(),
		mplcore.New(),
		launchpad.New(),
	}
}

type Airdrop struct {
	Account  solana.PublicKey
	Lamports uint64
}

type Params struct {
	// Admin pays for and holds update authority over the platform collection.
	Admin          solana.PrivateKey
	Treasury       solana.PublicKey
	TransactionFee uint64
	CollectionName string
	CollectionURI  string
	// PassHolders each receive one platform pass.
	PassHolders []solana.PublicKey
	Airdrops    []Airdrop
}

type Result struct {
	Settings        launchpad.Settings
	SettingsAddress solana.PublicKey
	// Passes maps a holder to its platform pass asset.
	Passes map[solana.PublicKey]solana.PublicKey
	// Applied is false when the ledger already held the settings record.
	Applied bool
}

// deriveKey returns a keypair fixed by admin and the given parts, so a
// restarted node finds the same platform accounts.
func deriveKey(admin solana.PrivateKey, parts ...[]byte) solana.PrivateKey {
	h := sha256.New()
	h.Write(admin)
	for _, part := range parts {
		h.Write(part)
	}
	return solana.PrivateKey(ed25519.NewKeyFromSeed(h.Sum(nil)))
}

// PlatformCollectionKey is the keypair of the platform collection created by admin.
func PlatformCollectionKey(admin solana.PrivateKey) solana.PrivateKey {
	return deriveKey(admin, []byte("platform-collection"))
}

// PassKey is the keypair of the platform pass minted to holder.
func PassKey(admin solana.PrivateKey, holder solana.PublicKey) solana.PrivateKey {
	return deriveKey(admin, []byte("platform-pass"), holder.Bytes())
}

// Apply registers the programs and, unless the settings record already
// exists, funds the airdrops, creates the platform collection, writes the
// settings and mints the platform passes.
func Apply(ctx context.Context, l *ledger.Ledger, sender Sender, p Params, logger *zap.Logger) (*Result, error) {
	logger = logger.Named("genesis")

	if err := l.Register(ctx, Programs()...); err != nil {
		return nil, fmt.Errorf("failed to register programs: %w", err)
	}

	settingsKey, bump, err := launchpad.FindSettingsAddress()
	if err != nil {
		return nil, err
	}

	existing, err := l.GetAccount(ctx, settingsKey)
	switch {
	case err == nil:
		settings, err := launchpad.DecodeSettings(existing.Data)
		if err != nil {
			return nil, fmt.Errorf("existing settings record is invalid: %w", err)
		}
		passes, err := existingPasses(ctx, l, p)
		if err != nil {
			return nil, err
		}
		logger.Info("Genesis already applied",
			zap.String("settings", settingsKey.String()),
			zap.Int("passes", len(passes)))
		return &Result{Settings: *settings, SettingsAddress: settingsKey, Passes: passes}, nil
	case !errors.Is(err, ledger.ErrAccountNotFound):
		return nil, err
	}

	if len(p.Admin) == 0 {
		return nil, errors.New("genesis admin is required")
	}
	if p.Treasury.IsZero() {
		return nil, errors.New("genesis treasury is required")
	}

	for _, drop := range p.Airdrops {
		if err := l.Airdrop(ctx, drop.Account, drop.Lamports); err != nil {
			return nil, err
		}
	}
	logger.Info("Airdrops funded", zap.Int("count", len(p.Airdrops)))

	collection := PlatformCollectionKey(p.Admin)
	ix, err := mplcore.NewCreateCollectionV2Instruction(mplcore.CreateCollectionV2Accounts{
		Collection: collection.PublicKey(),
		Payer:      p.Admin.PublicKey(),
	}, mplcore.CreateCollectionV2Args{Name: p.CollectionName, URI: p.CollectionURI})
	if err != nil {
		return nil, err
	}
	if _, err := sender.Send(ctx, p.Admin, []solana.Instruction{ix}, collection); err != nil {
		return nil, fmt.Errorf("failed to create platform collection: %w", err)
	}

	settings := launchpad.Settings{
		Treasury:       p.Treasury,
		TransactionFee: p.TransactionFee,
		Collection:     collection.PublicKey(),
		Bump:           bump,
	}
	data, err := launchpad.EncodeSettings(&settings)
	if err != nil {
		return nil, err
	}
	if err := l.SetAccount(ctx, settingsKey, &ledger.Account{
		Lamports: ledger.DefaultRent().MinimumBalance(len(data)),
		Data:     data,
		Owner:    launchpad.ProgramID,
	}); err != nil {
		return nil, err
	}
	logger.Info("Settings written",
		zap.String("settings", settingsKey.String()),
		zap.String("treasury", p.Treasury.String()),
		zap.Uint64("transaction_fee", p.TransactionFee),
		zap.String("collection", settings.Collection.String()))

	passes := make(map[solana.PublicKey]solana.PublicKey, len(p.PassHolders))
	for _, holder := range p.PassHolders {
		asset := PassKey(p.Admin, holder)
		ix, err := mplcore.NewCreateV2Instruction(mplcore.CreateV2Accounts{
			Asset:      asset.PublicKey(),
			Collection: settings.Collection,
			Payer:      p.Admin.PublicKey(),
			Owner:      holder,
		}, mplcore.CreateV2Args{Name: p.CollectionName + " Pass", URI: p.CollectionURI})
		if err != nil {
			return nil, err
		}
		if _, err := sender.Send(ctx, p.Admin, []solana.Instruction{ix}, asset); err != nil {
			return nil, fmt.Errorf("failed to mint pass for %s: %w", holder, err)
		}
		passes[holder] = asset.PublicKey()
	}
	logger.Info("Platform passes minted", zap.Int("count", len(passes)))

	return &Result{Settings: settings, SettingsAddress: settingsKey, Passes: passes, Applied: true}, nil
}

// existingPasses finds the passes of p.PassHolders already on the ledger.
func existingPasses(ctx context.Context, l *ledger.Ledger, p Params) (map[solana.PublicKey]solana.PublicKey, error) {
	passes := make(map[solana.PublicKey]solana.PublicKey, len(p.PassHolders))
	if len(p.Admin) == 0 {
		return passes, nil
	}
	for _, holder := range p.PassHolders {
		asset := PassKey(p.Admin, holder).PublicKey()
		_, err := l.GetAccount(ctx, asset)
		if errors.Is(err, ledger.ErrAccountNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		passes[holder] = asset
	}
	return passes, nil
}
