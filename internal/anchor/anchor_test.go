package anchor

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscriminators(t *testing.T) {
	tests := []struct {
		got  Discriminator
		want Discriminator
	}{
		{InstructionDiscriminator("initialize"), Discriminator{175, 175, 109, 31, 13, 152, 155, 237}},
		{InstructionDiscriminator("initialize_candy_store"), Discriminator{17, 176, 13, 108, 249, 176, 152, 246}},
		{AccountDiscriminator("Settings"), Discriminator{223, 179, 163, 190, 177, 224, 67, 173}},
		{EventDiscriminator("CreateCandyStoreEvent"), Discriminator{205, 43, 231, 244, 113, 132, 145, 185}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.got)
	}
}

type record struct {
	Owner solana.PublicKey
	Name  string
	Count uint64
}

func TestSerializeDeserialize(t *testing.T) {
	d := AccountDiscriminator("Record")
	in := record{Owner: solana.NewWallet().PublicKey(), Name: "store", Count: 7}

	data, err := Serialize(d, &in)
	require.NoError(t, err)
	assert.Len(t, data, 8+32+4+5+8)

	var out record
	require.NoError(t, Deserialize(data, d, &out))
	assert.Equal(t, in, out)

	assert.ErrorIs(t, Deserialize(data[:4], d, &out), ErrAccountDiscriminatorNotFound)
	assert.ErrorIs(t, Deserialize(data, AccountDiscriminator("Other"), &out), ErrAccountDiscriminatorMismatch)
	assert.ErrorIs(t, Deserialize(data[:20], d, &out), ErrAccountDidNotDeserialize)
}

func TestErrorLogLine(t *testing.T) {
	custom := NewError(ErrorCodeOffset, "CollectionNotMplCore", "Collection is not an MPL Core collection")
	assert.Equal(t,
		"AnchorError occurred. Error Code: CollectionNotMplCore. Error Number: 6000. Error Message: Collection is not an MPL Core collection.",
		custom.LogLine())

	withAccount := ErrConstraintSeeds.WithAccount("candy_store")
	assert.Equal(t,
		"AnchorError caused by account: candy_store. Error Code: ConstraintSeeds. Error Number: 2006. Error Message: A seeds constraint was violated.",
		withAccount.LogLine())
	assert.ErrorIs(t, withAccount, ErrConstraintSeeds)
	assert.Empty(t, ErrConstraintSeeds.Account, "WithAccount must not modify the sentinel")
}

func TestParseErrorLog(t *testing.T) {
	for _, e := range []*Error{
		NewError(6001, "NotTheOwnerOfCollection", "Not the owner of the collection asset"),
		ErrConstraintAddress.WithAccount("treasury_wallet"),
		ErrAccountNotInitialized,
	} {
		parsed, ok := ParseErrorLog("Program log: " + e.LogLine())
		require.True(t, ok, e.Name)
		assert.Equal(t, e, parsed)
	}

	_, ok := ParseErrorLog("Program log: Instruction: InitializeCandyStore")
	assert.False(t, ok)
	_, ok = ParseErrorLog("Program log: AnchorError occurred. Error Code: X. Error Number: abc. Error Message: y.")
	assert.False(t, ok)
}

func TestErrorFromLogsReturnsLast(t *testing.T) {
	logs := []string{
		"Program log: " + ErrConstraintMut.LogLine(),
		"Program log: something else",
		"Program log: " + ErrConstraintSigner.LogLine(),
		"Program X failed: custom program error",
	}
	e, ok := ErrorFromLogs(logs)
	require.True(t, ok)
	assert.Equal(t, uint32(2002), e.Code)

	_, ok = ErrorFromLogs(nil)
	assert.False(t, ok)
}

func TestAsError(t *testing.T) {
	wrapped := fmt.Errorf("instruction 0: %w", ErrConstraintOwner)
	e, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "ConstraintOwner", e.Name)

	_, ok = AsError(fmt.Errorf("plain"))
	assert.False(t, ok)
}

type ping struct {
	Value uint64
	Label string
}

func TestParseEvents(t *testing.T) {
	first, err := Serialize(EventDiscriminator("Ping"), &ping{Value: 1, Label: "a"})
	require.NoError(t, err)
	second, err := Serialize(EventDiscriminator("Ping"), &ping{Value: 2, Label: "b"})
	require.NoError(t, err)
	other, err := Serialize(EventDiscriminator("Pong"), &ping{Value: 3})
	require.NoError(t, err)

	logs := []string{
		"Program log: Instruction: Ping",
		programDataPrefix + base64.StdEncoding.EncodeToString(first),
		programDataPrefix + base64.StdEncoding.EncodeToString(other),
		programDataPrefix + "not-base64!",
		programDataPrefix + base64.StdEncoding.EncodeToString(second),
	}

	events, err := ParseEvents[ping](logs, "Ping")
	require.NoError(t, err)
	assert.Equal(t, []ping{{1, "a"}, {2, "b"}}, events)

	assert.Len(t, EventData(logs), 3)
}

func TestDecodeEventTruncated(t *testing.T) {
	data, err := Serialize(EventDiscriminator("Ping"), &ping{Value: 1, Label: "abc"})
	require.NoError(t, err)

	var ev ping
	ok, err := DecodeEvent(data[:12], "Ping", &ev)
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestOption(t *testing.T) {
	some := Some(42)
	v, ok := some.Get()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.True(t, some.IsSome())

	none := None[int]()
	_, ok = none.Get()
	assert.False(t, ok)
	assert.True(t, none.IsNone())
}

func TestPascalCase(t *testing.T) {
	assert.Equal(t, "InitializeCandyStore", pascalCase("initialize_candy_store"))
	assert.Equal(t, "InitializeCollection", pascalCase("initialize_collection"))
	assert.Equal(t, "Mint", pascalCase("mint"))
}
