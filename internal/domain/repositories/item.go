package repositories

import (
	"context"

	"github.com/dhyey2075/droply/internal/domain/models"
)

// ItemRepository is the persistence boundary for the items table.
//
// Every method is scoped to a single owner: callers pass the acting user's id
// and rows belonging to other users are invisible, which keeps ownership
// enforcement out of the service layer's per-row code paths.
type ItemRepository interface {
	// Insert persists a new item and fills in generated fields.
	Insert(ctx context.Context, item *models.Item) error

	// GetByID returns the item, or domain.ErrNotFound if no owned row matches.
	GetByID(ctx context.Context, id, userID string) (*models.Item, error)

	// ListChildren returns the direct children of a folder. The root
	// sentinel id is a valid parent and never resolves to a row itself.
	ListChildren(ctx context.Context, parentID, userID string) ([]models.Item, error)

	// ListByUser returns the user's full flat item list.
	ListByUser(ctx context.Context, userID string) ([]models.Item, error)

	// Rename updates an item's display name.
	// Returns domain.ErrNotFound if no owned row matches.
	Rename(ctx context.Context, id, userID, name string) (*models.Item, error)

	// DeleteByID removes a row. Deleting an already-removed row is not an
	// error; found reports whether a row was actually deleted.
	DeleteByID(ctx context.Context, id, userID string) (found bool, err error)
}
