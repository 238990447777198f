// internal/programs/launchpad/state.go
package launchpad

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/anchor"
	"github.com/rovshanmuradov/candy-launchpad/internal/programs/mplcore"
)

// ProgramID is the launchpad program.
var ProgramID = solana.MustPublicKeyFromBase58("CandyStLaunchpad1111111111111111111111111111")

// PDA seeds
const (
	CandyStoreSeed = "CANDYSTORE"
	SettingsSeed   = "SETTINGS"
)

var (
	settingsDiscriminator   = anchor.AccountDiscriminator("Settings")
	candyStoreDiscriminator = anchor.AccountDiscriminator("CandyStore")
)

// Settings is the platform configuration record at ["SETTINGS"].
type Settings struct {
	Treasury       solana.PublicKey
	TransactionFee uint64
	Collection     solana.PublicKey
	Bump           uint8
}

// Waives reports whether pass is a platform pass, which exempts its
// holder from the transaction fee.
func (s *Settings) Waives(pass *mplcore.Asset) bool {
	return pass != nil && pass.UpdateAuthority.Equals(mplcore.UpdateAuthorityCollection(s.Collection))
}

// FeeFor returns the fee charged to a store owner presenting pass, or no pass when nil.
func (s *Settings) FeeFor(pass *mplcore.Asset) uint64 {
	if s.Waives(pass) {
		return 0
	}
	return s.TransactionFee
}

// SettingsSpace is the allocated size of the settings account.
const SettingsSpace = anchor.DiscriminatorLength + 32 + 8 + 32 + 1

// SolPayment charges lamports per mint during a phase.
type SolPayment struct {
	Lamports    uint64
	Destination solana.PublicKey
}

// Phase is one sale window of a candy store.
type Phase struct {
	Label      string
	StartDate  *int64      `bin:"optional"`
	EndDate    *int64      `bin:"optional"`
	SolPayment *SolPayment `bin:"optional"`
	Allocation *uint64     `bin:"optional"`
	MintLimit  *uint64     `bin:"optional"`
	AllowList  *[32]byte   `bin:"optional"`
}

// size is the borsh size of the phase.
func (p Phase) size() int {
	n := 4 + len(p.Label) + 6
	if p.StartDate != nil {
		n += 8
	}
	if p.EndDate != nil {
		n += 8
	}
	if p.SolPayment != nil {
		n += 8 + 32
	}
	if p.Allocation != nil {
		n += 8
	}
	if p.MintLimit != nil {
		n += 8
	}
	if p.AllowList != nil {
		n += 32
	}
	return n
}

// CandyStore is the launch record of one collection at ["CANDYSTORE", collection].
type CandyStore struct {
	Owner         solana.PublicKey
	Name          string
	URL           string
	NumberOfItems uint64
	Minted        uint64
	ManifestID    string
	Collection    solana.PublicKey
	Phases        []Phase
	Bump          uint8
}

// CandyStoreSpace is the account size for a store with the given fields.
func CandyStoreSpace(name, url, manifestID string, phases []Phase) uint64 {
	n := anchor.DiscriminatorLength +
		32 +
		4 + len(name) +
		4 + len(url) +
		8 + 8 +
		4 + len(manifestID) +
		32 +
		4 +
		1
	for _, p := range phases {
		n += p.size()
	}
	return uint64(n)
}

// FindCandyStoreAddress derives the candy store PDA of a collection.
func FindCandyStoreAddress(collection solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(CandyStoreSeed), collection.Bytes()}, ProgramID)
}

// FindSettingsAddress derives the settings PDA.
func FindSettingsAddress() (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(SettingsSeed)}, ProgramID)
}

// DecodeSettings decodes settings account data.
func DecodeSettings(data []byte) (*Settings, error) {
	var s Settings
	if err := anchor.Deserialize(data, settingsDiscriminator, &s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return &s, nil
}

// EncodeSettings returns settings account data.
func EncodeSettings(s *Settings) ([]byte, error) {
	return anchor.Serialize(settingsDiscriminator, s)
}

// DecodeCandyStore decodes candy store account data.
func DecodeCandyStore(data []byte) (*CandyStore, error) {
	var c CandyStore
	if err := anchor.Deserialize(data, candyStoreDiscriminator, &c); err != nil {
		return nil, fmt.Errorf("failed to decode candy store: %w", err)
	}
	return &c, nil
}
