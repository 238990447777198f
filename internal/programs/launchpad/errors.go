// internal/programs/launchpad/errors.go
package launchpad

import "github.com/rovshanmuradov/candy-launchpad/internal/anchor"

var (
	ErrCollectionNotMplCore    = anchor.NewError(anchor.ErrorCodeOffset, "CollectionNotMplCore", "Collection is not an MPL Core collection")
	ErrNotTheOwnerOfCollection = anchor.NewError(anchor.ErrorCodeOffset+1, "NotTheOwnerOfCollection", "Not the owner of the collection asset")
)
