// internal/programs/mplcore/state.go
package mplcore

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// BaseCollectionV1 is the fixed part of a collection account.
type BaseCollectionV1 struct {
	Key             Key
	UpdateAuthority solana.PublicKey
	Name            string
	URI             string
	NumMinted       uint32
	CurrentSize     uint32
}

// BaseAssetV1 is the fixed part of an asset account.
type BaseAssetV1 struct {
	Key             Key
	Owner           solana.PublicKey
	UpdateAuthority UpdateAuthority
	Name            string
	URI             string
	Seq             *uint64 `bin:"optional"`
}

// PluginHeaderV1 follows the base data when plugins are attached.
type PluginHeaderV1 struct {
	Key                  Key
	PluginRegistryOffset uint64
}

// RegistryRecord locates one plugin in the account data.
type RegistryRecord struct {
	PluginType PluginType
	Authority  PluginAuthority
	Offset     uint64
}

// ExternalRegistryRecord is kept for layout compatibility; external plugins
// are not supported and the list is always empty.
type ExternalRegistryRecord struct {
	PluginType uint8
	Authority  PluginAuthority
	Offset     uint64
}

// PluginRegistryV1 is written at the end of the account data.
type PluginRegistryV1 struct {
	Key              Key
	Registry         []RegistryRecord
	ExternalRegistry []ExternalRegistryRecord
}

// PluginRecord is a decoded plugin with its authority.
type PluginRecord struct {
	Plugin    Plugin
	Authority PluginAuthority
}

// Collection is a decoded collection account.
type Collection struct {
	BaseCollectionV1
	Plugins []PluginRecord
}

// Asset is a decoded asset account.
type Asset struct {
	BaseAssetV1
	Plugins []PluginRecord
}

func encode(v any) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// appendPlugins lays plugins out after base: header, plugin data, then registry.
func appendPlugins(base []byte, plugins []PluginRecord) ([]byte, error) {
	if len(plugins) == 0 {
		return base, nil
	}
	const headerSize = 1 + 8

	out := bytes.NewBuffer(append([]byte(nil), base...))
	out.Write(make([]byte, headerSize))

	registry := PluginRegistryV1{
		Key:              KeyPluginRegistryV1,
		Registry:         make([]RegistryRecord, 0, len(plugins)),
		ExternalRegistry: []ExternalRegistryRecord{},
	}
	for _, rec := range plugins {
		data, err := encode(rec.Plugin)
		if err != nil {
			return nil, err
		}
		registry.Registry = append(registry.Registry, RegistryRecord{
			PluginType: rec.Plugin.Type,
			Authority:  rec.Authority,
			Offset:     uint64(out.Len()),
		})
		out.Write(data)
	}

	header, err := encode(PluginHeaderV1{Key: KeyPluginHeaderV1, PluginRegistryOffset: uint64(out.Len())})
	if err != nil {
		return nil, err
	}
	reg, err := encode(registry)
	if err != nil {
		return nil, err
	}
	out.Write(reg)

	data := out.Bytes()
	copy(data[len(base):], header)
	return data, nil
}

// readPlugins decodes the plugin area that starts at offset, if present.
func readPlugins(data []byte, offset int) ([]PluginRecord, error) {
	if offset >= len(data) {
		return nil, nil
	}
	var header PluginHeaderV1
	if err := bin.NewBorshDecoder(data[offset:]).Decode(&header); err != nil {
		return nil, err
	}
	if header.Key != KeyPluginHeaderV1 {
		return nil, fmt.Errorf("unexpected plugin header key %d", header.Key)
	}
	if header.PluginRegistryOffset >= uint64(len(data)) {
		return nil, fmt.Errorf("plugin registry offset %d out of range", header.PluginRegistryOffset)
	}

	var registry PluginRegistryV1
	if err := bin.NewBorshDecoder(data[header.PluginRegistryOffset:]).Decode(&registry); err != nil {
		return nil, err
	}
	if registry.Key != KeyPluginRegistryV1 {
		return nil, fmt.Errorf("unexpected plugin registry key %d", registry.Key)
	}

	plugins := make([]PluginRecord, 0, len(registry.Registry))
	for _, rec := range registry.Registry {
		if rec.Offset >= uint64(len(data)) {
			return nil, fmt.Errorf("plugin offset %d out of range", rec.Offset)
		}
		var plugin Plugin
		if err := bin.NewBorshDecoder(data[rec.Offset:]).Decode(&plugin); err != nil {
			return nil, err
		}
		plugins = append(plugins, PluginRecord{Plugin: plugin, Authority: rec.Authority})
	}
	return plugins, nil
}

// DecodeCollection decodes collection account data.
func DecodeCollection(data []byte) (*Collection, error) {
	if len(data) == 0 || Key(data[0]) != KeyCollectionV1 {
		return nil, fmt.Errorf("%w: not a collection", ErrDeserialization)
	}
	var c Collection
	if err := bin.NewBorshDecoder(data).Decode(&c.BaseCollectionV1); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	base, err := encode(c.BaseCollectionV1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	if c.Plugins, err = readPlugins(data, len(base)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	return &c, nil
}

// Marshal encodes the collection with its plugins.
func (c *Collection) Marshal() ([]byte, error) {
	base, err := encode(c.BaseCollectionV1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	data, err := appendPlugins(base, c.Plugins)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return data, nil
}

// Plugin returns the collection plugin of type t.
func (c *Collection) Plugin(t PluginType) (PluginRecord, bool) {
	for _, rec := range c.Plugins {
		if rec.Plugin.Type == t {
			return rec, true
		}
	}
	return PluginRecord{}, false
}

// UpdateDelegates lists the additional delegates of the UpdateDelegate plugin.
func (c *Collection) UpdateDelegates() []solana.PublicKey {
	rec, ok := c.Plugin(PluginTypeUpdateDelegate)
	if !ok || rec.Plugin.UpdateDelegate == nil {
		return nil
	}
	return rec.Plugin.UpdateDelegate.AdditionalDelegates
}

// IsUpdateDelegate reports whether key may act as the collection's update authority
// through the UpdateDelegate plugin.
func (c *Collection) IsUpdateDelegate(key solana.PublicKey) bool {
	rec, ok := c.Plugin(PluginTypeUpdateDelegate)
	if !ok {
		return false
	}
	if rec.Authority.Type == PluginAuthorityTypeAddress && rec.Authority.Address.Equals(key) {
		return true
	}
	for _, d := range c.UpdateDelegates() {
		if d.Equals(key) {
			return true
		}
	}
	return false
}

// DecodeAsset decodes asset account data.
func DecodeAsset(data []byte) (*Asset, error) {
	if len(data) == 0 || Key(data[0]) != KeyAssetV1 {
		return nil, fmt.Errorf("%w: not an asset", ErrDeserialization)
	}
	var a Asset
	if err := bin.NewBorshDecoder(data).Decode(&a.BaseAssetV1); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	base, err := encode(a.BaseAssetV1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	if a.Plugins, err = readPlugins(data, len(base)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	return &a, nil
}

// Marshal encodes the asset with its plugins.
func (a *Asset) Marshal() ([]byte, error) {
	base, err := encode(a.BaseAssetV1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	data, err := appendPlugins(base, a.Plugins)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return data, nil
}
