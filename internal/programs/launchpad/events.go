// internal/programs/launchpad/events.go
package launchpad

import (
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/candy-launchpad/internal/anchor"
)

const createCandyStoreEventName = "CreateCandyStoreEvent"

// CreateCandyStoreEvent is emitted once per initialized candy store.
type CreateCandyStoreEvent struct {
	CandyStore    solana.PublicKey
	Owner         solana.PublicKey
	Collection    solana.PublicKey
	Name          string
	URL           string
	ManifestID    string
	NumberOfItems uint64
}

// ParseCreateCandyStoreEvents extracts CreateCandyStoreEvents from transaction logs.
func ParseCreateCandyStoreEvents(logs []string) ([]CreateCandyStoreEvent, error) {
	return anchor.ParseEvents[CreateCandyStoreEvent](logs, createCandyStoreEventName)
}
