package repositories

import (
	"context"

	"github.com/dhyey2075/droply/internal/domain/models"
)

// DriveTokenRepository stores OAuth tokens for linked external drives.
type DriveTokenRepository interface {
	// Get returns the stored token for (provider, user), or
	// domain.ErrNotFound if the provider has not been linked.
	Get(ctx context.Context, provider models.DriveProvider, userID string) (*models.DriveToken, error)

	// Upsert inserts or replaces the token for (provider, user).
	Upsert(ctx context.Context, token *models.DriveToken) error

	// Delete unlinks the provider for the user. Missing rows are a no-op.
	Delete(ctx context.Context, provider models.DriveProvider, userID string) error
}
