// internal/programs/launchpad/instructions.go
package launchpad

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/anchor"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/mplcore"
)

// InitializeCollectionAccounts; a zero UpdateAuthority leaves the choice to MPL Core.
type InitializeCollectionAccounts struct {
	Collection      solana.PublicKey
	UpdateAuthority solana.PublicKey
	Payer           solana.PublicKey
}

// InitializeCandyStoreAccounts; a zero SettingsCollectionAsset means no
// platform pass is presented. The candy store and settings addresses are derived.
type InitializeCandyStoreAccounts struct {
	Collection              solana.PublicKey
	Owner                   solana.PublicKey
	Treasury                solana.PublicKey
	SettingsCollection      solana.PublicKey
	SettingsCollectionAsset solana.PublicKey
}

// optional returns the meta for key, or the program id placeholder when key is zero.
func optional(key solana.PublicKey, writable bool) *solana.AccountMeta {
	if key.IsZero() {
		return solana.Meta(ProgramID)
	}
	meta := solana.Meta(key)
	if writable {
		meta.WRITE()
	}
	return meta
}

func instructionData(name string, args any) ([]byte, error) {
	data, err := anchor.Serialize(anchor.InstructionDiscriminator(name), args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return data, nil
}

// NewInitializeCollectionInstruction builds initialize_collection. The
// collection keypair and the payer sign.
func NewInitializeCollectionInstruction(accounts InitializeCollectionAccounts, args InitializeCollectionArgs) (solana.Instruction, error) {
	data, err := instructionData(instructionInitializeCollection, &args)
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(accounts.Collection).WRITE().SIGNER(),
		optional(accounts.UpdateAuthority, false),
		solana.Meta(accounts.Payer).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(mplcore.ProgramID),
	}
	return solana.NewInstruction(ProgramID, metas, data), nil
}

// NewInitializeCandyStoreInstruction builds initialize_candy_store. The owner signs.
func NewInitializeCandyStoreInstruction(accounts InitializeCandyStoreAccounts, args InitializeCandyStoreArgs) (solana.Instruction, error) {
	candyStore, _, err := FindCandyStoreAddress(accounts.Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to derive candy store: %w", err)
	}
	settings, _, err := FindSettingsAddress()
	if err != nil {
		return nil, fmt.Errorf("failed to derive settings: %w", err)
	}
	data, err := instructionData(instructionInitializeCandyStore, &args)
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(accounts.Collection).WRITE(),
		solana.Meta(accounts.Owner).WRITE().SIGNER(),
		solana.Meta(candyStore).WRITE(),
		solana.Meta(settings),
		solana.Meta(accounts.Treasury).WRITE(),
		solana.Meta(accounts.SettingsCollection),
		optional(accounts.SettingsCollectionAsset, false),
		solana.Meta(mplcore.ProgramID),
		solana.Meta(solana.SystemProgramID),
	}
	return solana.NewInstruction(ProgramID, metas, data), nil
}
