// internal/launch/task.go
package launch

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// CollectionConfig describes the collection a task creates.
type CollectionConfig struct {
	Name string
	URI  string
	// UpdateAuthority is empty when the launching wallet keeps authority.
	UpdateAuthority solana.PublicKey
}

// StoreConfig describes the candy store a task initializes.
type StoreConfig struct {
	Name          string
	URL           string
	ManifestID    string
	NumberOfItems uint64
}

// Task is one collection plus candy store launch.
type Task struct {
	ID         int
	TaskName   string
	WalletName string
	Collection CollectionConfig
	Store      StoreConfig
	// UsePass presents the wallet's platform pass to waive the fee.
	UsePass bool
	// SingleTransaction sends both instructions atomically.
	SingleTransaction bool
	CreatedAt         time.Time
}

// Result is the outcome of a task.
type Result struct {
	TaskID     int
	TaskName   string
	WalletName string
	Collection solana.PublicKey
	CandyStore solana.PublicKey
	FeePaid    uint64
	Signatures []solana.Signature
	Duration   time.Duration
	Err        error
}

// Summary aggregates the results of a run in task order.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	FeesPaid  uint64
	Results   []Result
}
