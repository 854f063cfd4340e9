package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhyey2075/droply/internal/domain"
	"github.com/dhyey2075/droply/internal/domain/models"
	"github.com/dhyey2075/droply/internal/domain/repositories"
)

// PostgresDriveTokenRepository implements the DriveTokenRepository interface
type PostgresDriveTokenRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewDriveTokenRepository creates a new drive token repository
func NewDriveTokenRepository(config *RepositoryConfig) repositories.DriveTokenRepository {
	return &PostgresDriveTokenRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get returns the stored token for (provider, user)
func (r *PostgresDriveTokenRepository) Get(ctx context.Context, provider models.DriveProvider, userID string) (*models.DriveToken, error) {
	query := fmt.Sprintf(`
		SELECT id, provider, user_id, access_token, refresh_token, token_type,
			expiry_date, scope, created_at, updated_at
		FROM %s
		WHERE provider = $1 AND user_id = $2
	`, r.tables.DriveTokens)

	var token models.DriveToken
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, provider, userID).Scan(
		&token.ID,
		&token.Provider,
		&token.UserID,
		&token.AccessToken,
		&token.RefreshToken,
		&token.TokenType,
		&token.Expiry,
		&token.Scope,
		&token.CreatedAt,
		&token.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("%s token for user %s: %w", provider, userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get drive token: %w", err)
	}

	return &token, nil
}

// Upsert inserts or replaces the token for (provider, user)
func (r *PostgresDriveTokenRepository) Upsert(ctx context.Context, token *models.DriveToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	now := time.Now()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = now
	}
	token.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s (id, provider, user_id, access_token, refresh_token,
			token_type, expiry_date, scope, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (provider, user_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_type = EXCLUDED.token_type,
			expiry_date = EXCLUDED.expiry_date,
			scope = EXCLUDED.scope,
			updated_at = EXCLUDED.updated_at
	`, r.tables.DriveTokens)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		token.ID,
		token.Provider,
		token.UserID,
		token.AccessToken,
		token.RefreshToken,
		token.TokenType,
		token.Expiry,
		token.Scope,
		token.CreatedAt,
		token.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert drive token: %w", err)
	}

	return nil
}

// Delete unlinks the provider for the user
func (r *PostgresDriveTokenRepository) Delete(ctx context.Context, provider models.DriveProvider, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE provider = $1 AND user_id = $2
	`, r.tables.DriveTokens)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, provider, userID); err != nil {
		return fmt.Errorf("delete drive token: %w", err)
	}

	return nil
}
