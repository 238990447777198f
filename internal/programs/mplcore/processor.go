// internal/programs/mplcore/processor.go
package mplcore

import (
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/rovshanmuradov/candy-launchpad/internal/ledger"
)

// Compute charged per instruction, on top of the runtime's own costs.
const (
	createCollectionUnits uint64 = 6_000
	createAssetUnits      uint64 = 8_000
	addPluginUnits        uint64 = 4_000
)

// Program is an in-process MPL Core: collection and asset creation and
// collection plugin management.
type Program struct{}

var _ ledger.Program = (*Program)(nil)

func New() *Program {
	return &Program{}
}

func (p *Program) ProgramID() solana.PublicKey {
	return ProgramID
}

// Process dispatches one instruction. Program errors are logged as
// "Error: <message>" like the on-chain program does.
func (p *Program) Process(ic *ledger.InvokeContext, data []byte) error {
	err := p.dispatch(ic, data)
	var e *Error
	if errors.As(err, &e) {
		_ = ic.Log("Error: %s", e.Msg)
	}
	return err
}

func (p *Program) dispatch(ic *ledger.InvokeContext, data []byte) error {
	if len(data) == 0 {
		return ledger.ErrInvalidInstructionData
	}
	body := data[1:]

	switch data[0] {
	case InstructionCreateCollectionV2:
		var args CreateCollectionV2Args
		if err := decodeArgs(body, &args); err != nil {
			return err
		}
		if err := logInstruction(ic, "CreateCollectionV2", createCollectionUnits); err != nil {
			return err
		}
		return createCollection(ic, args)
	case InstructionCreateV2:
		var args CreateV2Args
		if err := decodeArgs(body, &args); err != nil {
			return err
		}
		if err := logInstruction(ic, "CreateV2", createAssetUnits); err != nil {
			return err
		}
		return createAsset(ic, args)
	case InstructionAddCollectionPluginV1:
		var args AddCollectionPluginV1Args
		if err := decodeArgs(body, &args); err != nil {
			return err
		}
		if err := logInstruction(ic, "AddCollectionPluginV1", addPluginUnits); err != nil {
			return err
		}
		return addCollectionPlugin(ic, args)
	case InstructionCreateV1, InstructionCreateCollectionV1, InstructionAddPluginV1:
		return ErrNotAvailable
	default:
		return fmt.Errorf("%w: unknown instruction %d", ledger.ErrInvalidInstructionData, data[0])
	}
}

func decodeArgs(body []byte, v any) error {
	if err := bin.NewBorshDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrInvalidInstructionData, err)
	}
	return nil
}

func logInstruction(ic *ledger.InvokeContext, name string, units uint64) error {
	if err := ic.Consume(units); err != nil {
		return err
	}
	return ic.Log("Instruction: %s", name)
}

// optionalAccount maps the program id placeholder to nil.
func optionalAccount(ic *ledger.InvokeContext, a *ledger.AccountInfo) *ledger.AccountInfo {
	if a.Key.Equals(ic.ProgramID()) {
		return nil
	}
	return a
}

func checkSystemProgram(a *ledger.AccountInfo) error {
	if !a.Key.Equals(solana.SystemProgramID) {
		return ErrInvalidSystemProgram
	}
	return nil
}

// initPlugins resolves creation plugins: default authorities, no duplicates,
// and only plugin types the target may carry.
func initPlugins(pairs *[]PluginAuthorityPair, forCollection bool) ([]PluginRecord, error) {
	if pairs == nil {
		return nil, nil
	}
	seen := make(map[PluginType]struct{}, len(*pairs))
	records := make([]PluginRecord, 0, len(*pairs))
	for _, pair := range *pairs {
		if forCollection && pair.Plugin.Type.DefaultAuthority().Type == PluginAuthorityTypeOwner {
			return nil, ErrInvalidPlugin
		}
		if _, ok := seen[pair.Plugin.Type]; ok {
			return nil, ErrPluginAlreadyExists
		}
		seen[pair.Plugin.Type] = struct{}{}

		authority := pair.Plugin.Type.DefaultAuthority()
		if pair.Authority != nil {
			authority = *pair.Authority
		}
		records = append(records, PluginRecord{Plugin: pair.Plugin, Authority: authority})
	}
	return records, nil
}

// createAccount allocates an account owned by this program and writes data into it.
func createAccount(ic *ledger.InvokeContext, payer, target *ledger.AccountInfo, data []byte) error {
	lamports := ic.Rent().MinimumBalance(len(data))
	ix, err := system.NewCreateAccountInstruction(lamports, uint64(len(data)), ProgramID, payer.Key, target.Key).ValidateAndBuild()
	if err != nil {
		return fmt.Errorf("failed to build create account instruction: %w", err)
	}
	if err := ic.Invoke(ix); err != nil {
		return err
	}
	copy(target.Data(), data)
	return nil
}

// accounts: collection, update_authority?, payer, system_program
func createCollection(ic *ledger.InvokeContext, args CreateCollectionV2Args) error {
	infos := ic.Accounts()
	if len(infos) < 4 {
		return ledger.ErrNotEnoughAccountKeys
	}
	collection, payer, systemProgram := infos[0], infos[2], infos[3]
	updateAuthority := optionalAccount(ic, infos[1])

	if err := checkSystemProgram(systemProgram); err != nil {
		return err
	}
	if !collection.IsSigner || !payer.IsSigner {
		return ledger.ErrMissingRequiredSignature
	}
	if args.ExternalPluginAdapters != nil && len(*args.ExternalPluginAdapters) > 0 {
		return ErrNotAvailable
	}

	plugins, err := initPlugins(args.Plugins, true)
	if err != nil {
		return err
	}

	authority := payer.Key
	if updateAuthority != nil {
		authority = updateAuthority.Key
	}
	c := Collection{
		BaseCollectionV1: BaseCollectionV1{
			Key:             KeyCollectionV1,
			UpdateAuthority: authority,
			Name:            args.Name,
			URI:             args.URI,
		},
		Plugins: plugins,
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return createAccount(ic, payer, collection, data)
}

// accounts: asset, collection?, authority?, payer, owner?, update_authority?,
// system_program, log_wrapper?
func createAsset(ic *ledger.InvokeContext, args CreateV2Args) error {
	infos := ic.Accounts()
	if len(infos) < 7 {
		return ledger.ErrNotEnoughAccountKeys
	}
	asset, payer, systemProgram := infos[0], infos[3], infos[6]
	collectionInfo := optionalAccount(ic, infos[1])
	authorityInfo := optionalAccount(ic, infos[2])
	ownerInfo := optionalAccount(ic, infos[4])
	updateAuthorityInfo := optionalAccount(ic, infos[5])

	if err := checkSystemProgram(systemProgram); err != nil {
		return err
	}
	if args.DataState != DataStateAccount {
		return ErrNotAvailable
	}
	if args.ExternalPluginAdapters != nil && len(*args.ExternalPluginAdapters) > 0 {
		return ErrNotAvailable
	}
	if !asset.IsSigner || !payer.IsSigner {
		return ledger.ErrMissingRequiredSignature
	}

	authority := payer
	if authorityInfo != nil {
		if !authorityInfo.IsSigner {
			return ledger.ErrMissingRequiredSignature
		}
		authority = authorityInfo
	}
	owner := payer.Key
	if ownerInfo != nil {
		owner = ownerInfo.Key
	}

	var updateAuthority UpdateAuthority
	switch {
	case collectionInfo != nil && updateAuthorityInfo != nil:
		return ErrConflictingAuthority
	case collectionInfo != nil:
		if err := mintIntoCollection(collectionInfo, authority.Key); err != nil {
			return err
		}
		updateAuthority = UpdateAuthorityCollection(collectionInfo.Key)
	case updateAuthorityInfo != nil:
		updateAuthority = UpdateAuthorityAddress(updateAuthorityInfo.Key)
	default:
		updateAuthority = UpdateAuthorityAddress(authority.Key)
	}

	plugins, err := initPlugins(args.Plugins, false)
	if err != nil {
		return err
	}
	a := Asset{
		BaseAssetV1: BaseAssetV1{
			Key:             KeyAssetV1,
			Owner:           owner,
			UpdateAuthority: updateAuthority,
			Name:            args.Name,
			URI:             args.URI,
		},
		Plugins: plugins,
	}
	data, err := a.Marshal()
	if err != nil {
		return err
	}
	return createAccount(ic, payer, asset, data)
}

// mintIntoCollection checks that authority may add assets to the collection
// and bumps its counters.
func mintIntoCollection(info *ledger.AccountInfo, authority solana.PublicKey) error {
	if !info.Owner().Equals(ProgramID) {
		return ErrIncorrectAccount
	}
	if !info.IsWritable {
		return ErrIncorrectAccount
	}
	c, err := DecodeCollection(info.Data())
	if err != nil {
		return err
	}
	if !c.UpdateAuthority.Equals(authority) && !c.IsUpdateDelegate(authority) {
		return ErrInvalidAuthority
	}
	if c.NumMinted == ^uint32(0) || c.CurrentSize == ^uint32(0) {
		return ErrNumericalOverflow
	}
	c.NumMinted++
	c.CurrentSize++

	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if len(data) != len(info.Data()) {
		return ErrSerialization
	}
	copy(info.Data(), data)
	return nil
}

// accounts: collection, payer, authority?, system_program, log_wrapper?
func addCollectionPlugin(ic *ledger.InvokeContext, args AddCollectionPluginV1Args) error {
	infos := ic.Accounts()
	if len(infos) < 4 {
		return ledger.ErrNotEnoughAccountKeys
	}
	collection, payer, systemProgram := infos[0], infos[1], infos[3]
	authorityInfo := optionalAccount(ic, infos[2])

	if err := checkSystemProgram(systemProgram); err != nil {
		return err
	}
	if !payer.IsSigner {
		return ledger.ErrMissingRequiredSignature
	}
	authority := payer
	if authorityInfo != nil {
		if !authorityInfo.IsSigner {
			return ledger.ErrMissingRequiredSignature
		}
		authority = authorityInfo
	}
	if !collection.Owner().Equals(ProgramID) || !collection.IsWritable {
		return ErrIncorrectAccount
	}

	c, err := DecodeCollection(collection.Data())
	if err != nil {
		return err
	}
	if args.Plugin.Type.DefaultAuthority().Type == PluginAuthorityTypeOwner {
		return ErrInvalidPlugin
	}
	if !c.UpdateAuthority.Equals(authority.Key) {
		return ErrInvalidAuthority
	}
	if _, ok := c.Plugin(args.Plugin.Type); ok {
		return ErrPluginAlreadyExists
	}

	initAuthority := args.Plugin.Type.DefaultAuthority()
	if args.InitAuthority != nil {
		initAuthority = *args.InitAuthority
	}
	c.Plugins = append(c.Plugins, PluginRecord{Plugin: args.Plugin, Authority: initAuthority})

	data, err := c.Marshal()
	if err != nil {
		return err
	}
	required := ic.Rent().MinimumBalance(len(data))
	if required > collection.Lamports() {
		ix, err := system.NewTransferInstruction(required-collection.Lamports(), payer.Key, collection.Key).ValidateAndBuild()
		if err != nil {
			return fmt.Errorf("failed to build transfer instruction: %w", err)
		}
		if err := ic.Invoke(ix); err != nil {
			return err
		}
	}
	collection.SetData(data)
	return nil
}
