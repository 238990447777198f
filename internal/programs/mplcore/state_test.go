package mplcore

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionLayoutWithPlugins(t *testing.T) {
	authority := solana.NewWallet().PublicKey()
	delegate := solana.NewWallet().PublicKey()

	c := &Collection{
		BaseCollectionV1: BaseCollectionV1{
			Key:             KeyCollectionV1,
			UpdateAuthority: authority,
			Name:            "Candy",
			URI:             "https://example.com/candy.json",
			NumMinted:       3,
			CurrentSize:     2,
		},
		Plugins: []PluginRecord{
			{Plugin: NewUpdateDelegatePlugin(delegate), Authority: PluginAuthorityUpdateAuthority()},
			{Plugin: NewAttributesPlugin(Attribute{Key: "tier", Value: "gold"}), Authority: PluginAuthorityAddress(authority)},
		},
	}

	data, err := c.Marshal()
	require.NoError(t, err)

	// key + authority + name + uri + counters
	baseLen := 1 + 32 + (4 + 5) + (4 + 30) + 4 + 4
	assert.Equal(t, byte(KeyCollectionV1), data[0])
	assert.Equal(t, byte(KeyPluginHeaderV1), data[baseLen])

	decoded, err := DecodeCollection(data)
	require.NoError(t, err)
	assert.Equal(t, c.BaseCollectionV1, decoded.BaseCollectionV1)
	require.Len(t, decoded.Plugins, 2)

	assert.Equal(t, []solana.PublicKey{delegate}, decoded.UpdateDelegates())
	assert.True(t, decoded.IsUpdateDelegate(delegate))
	assert.False(t, decoded.IsUpdateDelegate(authority))

	attrs, ok := decoded.Plugin(PluginTypeAttributes)
	require.True(t, ok)
	assert.Equal(t, PluginAuthorityAddress(authority), attrs.Authority)
	assert.Equal(t, "gold", attrs.Plugin.Attributes.AttributeList[0].Value)
}

func TestCollectionWithoutPluginsHasNoHeader(t *testing.T) {
	c := &Collection{BaseCollectionV1: BaseCollectionV1{Key: KeyCollectionV1, Name: "a", URI: "b"}}
	data, err := c.Marshal()
	require.NoError(t, err)
	assert.Len(t, data, 1+32+5+5+4+4)

	decoded, err := DecodeCollection(data)
	require.NoError(t, err)
	assert.Empty(t, decoded.Plugins)
	assert.Nil(t, decoded.UpdateDelegates())
}

func TestDecodeRejectsWrongKey(t *testing.T) {
	a := &Asset{BaseAssetV1: BaseAssetV1{Key: KeyAssetV1, UpdateAuthority: UpdateAuthorityNone()}}
	data, err := a.Marshal()
	require.NoError(t, err)

	_, err = DecodeCollection(data)
	assert.ErrorIs(t, err, ErrDeserialization)

	_, err = DecodeAsset(nil)
	assert.ErrorIs(t, err, ErrDeserialization)
}

func TestAssetUpdateAuthorityVariants(t *testing.T) {
	collection := solana.NewWallet().PublicKey()
	tests := []struct {
		name      string
		authority UpdateAuthority
		size      int
	}{
		{"none", UpdateAuthorityNone(), 1},
		{"address", UpdateAuthorityAddress(collection), 33},
		{"collection", UpdateAuthorityCollection(collection), 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Asset{BaseAssetV1: BaseAssetV1{
				Key:             KeyAssetV1,
				Owner:           solana.NewWallet().PublicKey(),
				UpdateAuthority: tt.authority,
				Name:            "Pass",
				URI:             "uri",
			}}
			data, err := a.Marshal()
			require.NoError(t, err)
			// key + owner + authority + name + uri + seq tag
			assert.Len(t, data, 1+32+tt.size+(4+4)+(4+3)+1)

			decoded, err := DecodeAsset(data)
			require.NoError(t, err)
			assert.True(t, decoded.UpdateAuthority.Equals(tt.authority))
			assert.Nil(t, decoded.Seq)
		})
	}
}

func TestPluginRejectsUnsupportedTypes(t *testing.T) {
	c := &Collection{
		BaseCollectionV1: BaseCollectionV1{Key: KeyCollectionV1},
		Plugins:          []PluginRecord{{Plugin: Plugin{Type: PluginTypeRoyalties}}},
	}
	_, err := c.Marshal()
	assert.ErrorIs(t, err, ErrSerialization)
}
