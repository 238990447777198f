// internal/programs/mplcore/types.go
package mplcore

import (
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Key is the account type tag written first in every program account.
type Key uint8

const (
	KeyUninitialized    Key = 0
	KeyAssetV1          Key = 1
	KeyHashedAssetV1    Key = 2
	KeyPluginHeaderV1   Key = 3
	KeyPluginRegistryV1 Key = 4
	KeyCollectionV1     Key = 5
)

// UpdateAuthorityType selects the UpdateAuthority variant.
type UpdateAuthorityType uint8

const (
	UpdateAuthorityTypeNone       UpdateAuthorityType = 0
	UpdateAuthorityTypeAddress    UpdateAuthorityType = 1
	UpdateAuthorityTypeCollection UpdateAuthorityType = 2
)

// UpdateAuthority of an asset: nobody, an address, or the collection it belongs to.
type UpdateAuthority struct {
	Type    UpdateAuthorityType
	Address solana.PublicKey
}

func UpdateAuthorityNone() UpdateAuthority {
	return UpdateAuthority{Type: UpdateAuthorityTypeNone}
}

func UpdateAuthorityAddress(addr solana.PublicKey) UpdateAuthority {
	return UpdateAuthority{Type: UpdateAuthorityTypeAddress, Address: addr}
}

func UpdateAuthorityCollection(collection solana.PublicKey) UpdateAuthority {
	return UpdateAuthority{Type: UpdateAuthorityTypeCollection, Address: collection}
}

func (u UpdateAuthority) Equals(other UpdateAuthority) bool {
	if u.Type != other.Type {
		return false
	}
	return u.Type == UpdateAuthorityTypeNone || u.Address.Equals(other.Address)
}

func (u UpdateAuthority) String() string {
	switch u.Type {
	case UpdateAuthorityTypeAddress:
		return "Address(" + u.Address.String() + ")"
	case UpdateAuthorityTypeCollection:
		return "Collection(" + u.Address.String() + ")"
	default:
		return "None"
	}
}

func (u UpdateAuthority) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint8(uint8(u.Type)); err != nil {
		return err
	}
	if u.Type == UpdateAuthorityTypeNone {
		return nil
	}
	return encoder.WriteBytes(u.Address[:], false)
}

func (u *UpdateAuthority) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	tag, err := decoder.ReadUint8()
	if err != nil {
		return err
	}
	u.Type = UpdateAuthorityType(tag)
	switch u.Type {
	case UpdateAuthorityTypeNone:
		u.Address = solana.PublicKey{}
		return nil
	case UpdateAuthorityTypeAddress, UpdateAuthorityTypeCollection:
		u.Address, err = readPublicKey(decoder)
		return err
	default:
		return fmt.Errorf("unknown update authority variant %d", tag)
	}
}

// PluginAuthorityType selects the PluginAuthority variant.
type PluginAuthorityType uint8

const (
	PluginAuthorityTypeNone            PluginAuthorityType = 0
	PluginAuthorityTypeOwner           PluginAuthorityType = 1
	PluginAuthorityTypeUpdateAuthority PluginAuthorityType = 2
	PluginAuthorityTypeAddress         PluginAuthorityType = 3
)

// PluginAuthority is who may manage a plugin.
type PluginAuthority struct {
	Type    PluginAuthorityType
	Address solana.PublicKey
}

func PluginAuthorityUpdateAuthority() PluginAuthority {
	return PluginAuthority{Type: PluginAuthorityTypeUpdateAuthority}
}

func PluginAuthorityOwner() PluginAuthority {
	return PluginAuthority{Type: PluginAuthorityTypeOwner}
}

func PluginAuthorityAddress(addr solana.PublicKey) PluginAuthority {
	return PluginAuthority{Type: PluginAuthorityTypeAddress, Address: addr}
}

func (a PluginAuthority) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint8(uint8(a.Type)); err != nil {
		return err
	}
	if a.Type != PluginAuthorityTypeAddress {
		return nil
	}
	return encoder.WriteBytes(a.Address[:], false)
}

func (a *PluginAuthority) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	tag, err := decoder.ReadUint8()
	if err != nil {
		return err
	}
	a.Type = PluginAuthorityType(tag)
	switch a.Type {
	case PluginAuthorityTypeNone, PluginAuthorityTypeOwner, PluginAuthorityTypeUpdateAuthority:
		a.Address = solana.PublicKey{}
		return nil
	case PluginAuthorityTypeAddress:
		a.Address, err = readPublicKey(decoder)
		return err
	default:
		return fmt.Errorf("unknown plugin authority variant %d", tag)
	}
}

// PluginType is the plugin discriminant, also used in the plugin registry.
type PluginType uint8

const (
	PluginTypeRoyalties               PluginType = 0
	PluginTypeFreezeDelegate          PluginType = 1
	PluginTypeBurnDelegate            PluginType = 2
	PluginTypeTransferDelegate        PluginType = 3
	PluginTypeUpdateDelegate          PluginType = 4
	PluginTypePermanentFreezeDelegate PluginType = 5
	PluginTypeAttributes              PluginType = 6
)

func (t PluginType) String() string {
	switch t {
	case PluginTypeRoyalties:
		return "Royalties"
	case PluginTypeFreezeDelegate:
		return "FreezeDelegate"
	case PluginTypeBurnDelegate:
		return "BurnDelegate"
	case PluginTypeTransferDelegate:
		return "TransferDelegate"
	case PluginTypeUpdateDelegate:
		return "UpdateDelegate"
	case PluginTypePermanentFreezeDelegate:
		return "PermanentFreezeDelegate"
	case PluginTypeAttributes:
		return "Attributes"
	default:
		return fmt.Sprintf("PluginType(%d)", uint8(t))
	}
}

// DefaultAuthority is the authority a plugin gets when none is requested.
func (t PluginType) DefaultAuthority() PluginAuthority {
	switch t {
	case PluginTypeFreezeDelegate, PluginTypeBurnDelegate, PluginTypeTransferDelegate:
		return PluginAuthorityOwner()
	default:
		return PluginAuthorityUpdateAuthority()
	}
}

type UpdateDelegate struct {
	AdditionalDelegates []solana.PublicKey
}

type FreezeDelegate struct {
	Frozen bool
}

type Attribute struct {
	Key   string
	Value string
}

type Attributes struct {
	AttributeList []Attribute
}

// Plugin is one plugin value. Variants without data (BurnDelegate,
// TransferDelegate) carry only Type.
type Plugin struct {
	Type           PluginType
	UpdateDelegate *UpdateDelegate
	FreezeDelegate *FreezeDelegate
	Attributes     *Attributes
}

func NewUpdateDelegatePlugin(delegates ...solana.PublicKey) Plugin {
	return Plugin{
		Type:           PluginTypeUpdateDelegate,
		UpdateDelegate: &UpdateDelegate{AdditionalDelegates: delegates},
	}
}

func NewAttributesPlugin(attrs ...Attribute) Plugin {
	return Plugin{Type: PluginTypeAttributes, Attributes: &Attributes{AttributeList: attrs}}
}

func (p Plugin) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint8(uint8(p.Type)); err != nil {
		return err
	}
	switch p.Type {
	case PluginTypeUpdateDelegate:
		delegates := []solana.PublicKey{}
		if p.UpdateDelegate != nil {
			delegates = p.UpdateDelegate.AdditionalDelegates
		}
		if err := encoder.WriteUint32(uint32(len(delegates)), binary.LittleEndian); err != nil {
			return err
		}
		for _, d := range delegates {
			if err := encoder.WriteBytes(d[:], false); err != nil {
				return err
			}
		}
		return nil
	case PluginTypeFreezeDelegate:
		frozen := p.FreezeDelegate != nil && p.FreezeDelegate.Frozen
		return encoder.WriteBool(frozen)
	case PluginTypeBurnDelegate, PluginTypeTransferDelegate:
		return nil
	case PluginTypeAttributes:
		var list []Attribute
		if p.Attributes != nil {
			list = p.Attributes.AttributeList
		}
		if err := encoder.WriteUint32(uint32(len(list)), binary.LittleEndian); err != nil {
			return err
		}
		for _, attr := range list {
			if err := encoder.WriteString(attr.Key); err != nil {
				return err
			}
			if err := encoder.WriteString(attr.Value); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidPlugin, p.Type)
	}
}

func (p *Plugin) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	tag, err := decoder.ReadUint8()
	if err != nil {
		return err
	}
	*p = Plugin{Type: PluginType(tag)}
	switch p.Type {
	case PluginTypeUpdateDelegate:
		n, err := decoder.ReadUint32(binary.LittleEndian)
		if err != nil {
			return err
		}
		if int(n)*solana.PublicKeyLength > decoder.Remaining() {
			return fmt.Errorf("update delegate list of %d does not fit", n)
		}
		delegates := make([]solana.PublicKey, n)
		for i := range delegates {
			if delegates[i], err = readPublicKey(decoder); err != nil {
				return err
			}
		}
		p.UpdateDelegate = &UpdateDelegate{AdditionalDelegates: delegates}
		return nil
	case PluginTypeFreezeDelegate:
		frozen, err := decoder.ReadBool()
		if err != nil {
			return err
		}
		p.FreezeDelegate = &FreezeDelegate{Frozen: frozen}
		return nil
	case PluginTypeBurnDelegate, PluginTypeTransferDelegate:
		return nil
	case PluginTypeAttributes:
		n, err := decoder.ReadUint32(binary.LittleEndian)
		if err != nil {
			return err
		}
		if int(n) > decoder.Remaining() {
			return fmt.Errorf("attribute list of %d does not fit", n)
		}
		list := make([]Attribute, n)
		for i := range list {
			if list[i].Key, err = decoder.ReadString(); err != nil {
				return err
			}
			if list[i].Value, err = decoder.ReadString(); err != nil {
				return err
			}
		}
		p.Attributes = &Attributes{AttributeList: list}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidPlugin, p.Type)
	}
}

func readPublicKey(decoder *bin.Decoder) (solana.PublicKey, error) {
	raw, err := decoder.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(raw), nil
}
