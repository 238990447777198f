// internal/programs/mplcore/instructions.go
package mplcore

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ProgramID is the MPL Core program.
var ProgramID = solana.MustPublicKeyFromBase58("CoREENxT6tW1HoK8ypY1SxRMZTcVPm7R94rH4PZNhX7d")

// Instruction discriminators, the borsh enum index of MplAssetInstruction.
const (
	InstructionCreateV1              uint8 = 0
	InstructionCreateCollectionV1    uint8 = 1
	InstructionAddPluginV1           uint8 = 2
	InstructionAddCollectionPluginV1 uint8 = 3
	InstructionCreateV2              uint8 = 20
	InstructionCreateCollectionV2    uint8 = 21
)

// DataState selects where asset data lives. Only AccountState is available.
type DataState uint8

const (
	DataStateAccount DataState = 0
	DataStateLedger  DataState = 1
)

// PluginAuthorityPair is a plugin to attach at creation, with an optional authority.
type PluginAuthorityPair struct {
	Plugin    Plugin
	Authority *PluginAuthority
}

func (p PluginAuthorityPair) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := p.Plugin.MarshalWithEncoder(encoder); err != nil {
		return err
	}
	return encodeOptionalAuthority(encoder, p.Authority)
}

func (p *PluginAuthorityPair) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if err = p.Plugin.UnmarshalWithDecoder(decoder); err != nil {
		return err
	}
	p.Authority, err = decodeOptionalAuthority(decoder)
	return err
}

// The decoder does not read the Option flag in front of a type with its own
// UnmarshalWithDecoder, so Option<PluginAuthority> is framed here.
func encodeOptionalAuthority(encoder *bin.Encoder, authority *PluginAuthority) error {
	if authority == nil {
		return encoder.WriteBool(false)
	}
	if err := encoder.WriteBool(true); err != nil {
		return err
	}
	return authority.MarshalWithEncoder(encoder)
}

func decodeOptionalAuthority(decoder *bin.Decoder) (*PluginAuthority, error) {
	present, err := decoder.ReadBool()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	authority := new(PluginAuthority)
	if err := authority.UnmarshalWithDecoder(decoder); err != nil {
		return nil, err
	}
	return authority, nil
}

// ExternalPluginAdapter stands in for external plugin adapter init data,
// which this program does not accept.
type ExternalPluginAdapter struct{}

func (ExternalPluginAdapter) MarshalWithEncoder(*bin.Encoder) error {
	return ErrNotAvailable
}

func (*ExternalPluginAdapter) UnmarshalWithDecoder(*bin.Decoder) error {
	return ErrNotAvailable
}

type CreateCollectionV2Args struct {
	Name                   string
	URI                    string
	Plugins                *[]PluginAuthorityPair   `bin:"optional"`
	ExternalPluginAdapters *[]ExternalPluginAdapter `bin:"optional"`
}

type CreateV2Args struct {
	DataState              DataState
	Name                   string
	URI                    string
	Plugins                *[]PluginAuthorityPair   `bin:"optional"`
	ExternalPluginAdapters *[]ExternalPluginAdapter `bin:"optional"`
}

type AddCollectionPluginV1Args struct {
	Plugin        Plugin
	InitAuthority *PluginAuthority
}

func (a AddCollectionPluginV1Args) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := a.Plugin.MarshalWithEncoder(encoder); err != nil {
		return err
	}
	return encodeOptionalAuthority(encoder, a.InitAuthority)
}

func (a *AddCollectionPluginV1Args) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if err = a.Plugin.UnmarshalWithDecoder(decoder); err != nil {
		return err
	}
	a.InitAuthority, err = decodeOptionalAuthority(decoder)
	return err
}

// CreateCollectionV2Accounts; zero keys mark absent optional accounts.
type CreateCollectionV2Accounts struct {
	Collection      solana.PublicKey
	UpdateAuthority solana.PublicKey
	Payer           solana.PublicKey
}

type CreateV2Accounts struct {
	Asset           solana.PublicKey
	Collection      solana.PublicKey
	Authority       solana.PublicKey
	Payer           solana.PublicKey
	Owner           solana.PublicKey
	UpdateAuthority solana.PublicKey
}

type AddCollectionPluginV1Accounts struct {
	Collection solana.PublicKey
	Payer      solana.PublicKey
	Authority  solana.PublicKey
}

// optional returns the meta for key, or the program id placeholder when key is zero.
func optional(key solana.PublicKey, writable, signer bool) *solana.AccountMeta {
	if key.IsZero() {
		return solana.Meta(ProgramID)
	}
	meta := solana.Meta(key)
	if writable {
		meta.WRITE()
	}
	if signer {
		meta.SIGNER()
	}
	return meta
}

func instructionData(discriminator uint8, args any) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(discriminator)
	if err := bin.NewBorshEncoder(buf).Encode(args); err != nil {
		return nil, fmt.Errorf("failed to encode instruction %d: %w", discriminator, err)
	}
	return buf.Bytes(), nil
}

// NewCreateCollectionV2Instruction builds CreateCollectionV2. The collection
// keypair and the payer sign.
func NewCreateCollectionV2Instruction(accounts CreateCollectionV2Accounts, args CreateCollectionV2Args) (solana.Instruction, error) {
	data, err := instructionData(InstructionCreateCollectionV2, args)
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(accounts.Collection).WRITE().SIGNER(),
		optional(accounts.UpdateAuthority, false, false),
		solana.Meta(accounts.Payer).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
	}
	return solana.NewInstruction(ProgramID, metas, data), nil
}

// NewCreateV2Instruction builds CreateV2. The asset keypair, the payer and,
// when set, the authority sign.
func NewCreateV2Instruction(accounts CreateV2Accounts, args CreateV2Args) (solana.Instruction, error) {
	data, err := instructionData(InstructionCreateV2, args)
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(accounts.Asset).WRITE().SIGNER(),
		optional(accounts.Collection, true, false),
		optional(accounts.Authority, false, true),
		solana.Meta(accounts.Payer).WRITE().SIGNER(),
		optional(accounts.Owner, false, false),
		optional(accounts.UpdateAuthority, false, false),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(ProgramID),
	}
	return solana.NewInstruction(ProgramID, metas, data), nil
}

// NewAddCollectionPluginV1Instruction builds AddCollectionPluginV1.
func NewAddCollectionPluginV1Instruction(accounts AddCollectionPluginV1Accounts, args AddCollectionPluginV1Args) (solana.Instruction, error) {
	data, err := instructionData(InstructionAddCollectionPluginV1, args)
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(accounts.Collection).WRITE(),
		solana.Meta(accounts.Payer).WRITE().SIGNER(),
		optional(accounts.Authority, false, true),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(ProgramID),
	}
	return solana.NewInstruction(ProgramID, metas, data), nil
}
