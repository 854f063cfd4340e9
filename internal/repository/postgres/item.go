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

// PostgresItemRepository implements the ItemRepository interface
type PostgresItemRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewItemRepository creates a new item repository
func NewItemRepository(config *RepositoryConfig) repositories.ItemRepository {
	return &PostgresItemRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const itemColumns = `id, name, path, size, type, file_url, imagekit_file_id,
	thumbnail_url, user_id, parent_id, is_folder, is_starred, is_trash,
	created_at, updated_at`

// Insert persists a new item. A zero ID is replaced with a fresh UUID; the
// parent id defaults to the root sentinel.
func (r *PostgresItemRepository) Insert(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.ParentID == "" {
		item.ParentID = models.RootFolderID
	}
	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, path, size, type, file_url, imagekit_file_id,
			thumbnail_url, user_id, parent_id, is_folder, is_starred, is_trash,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`, r.tables.Items)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		item.ID,
		item.Name,
		item.Path,
		item.Size,
		item.Type,
		item.FileURL,
		item.RemoteID,
		item.ThumbnailURL,
		item.UserID,
		item.ParentID,
		item.IsFolder,
		item.IsStarred,
		item.IsTrash,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("item %s: %w", item.ID, domain.ErrConflict)
		}
		return fmt.Errorf("insert item: %w", err)
	}

	return nil
}

// GetByID retrieves an item owned by the given user
func (r *PostgresItemRepository) GetByID(ctx context.Context, id, userID string) (*models.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, itemColumns, r.tables.Items)

	item, err := scanItem(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return item, nil
}

// ListChildren lists the direct children of a folder (or of the root sentinel)
func (r *PostgresItemRepository) ListChildren(ctx context.Context, parentID, userID string) ([]models.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE parent_id = $1 AND user_id = $2
		ORDER BY is_folder DESC, name ASC
	`, itemColumns, r.tables.Items)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, parentID, userID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}

// ListByUser returns the user's full flat item list
func (r *PostgresItemRepository) ListByUser(ctx context.Context, userID string) ([]models.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, itemColumns, r.tables.Items)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}

// Rename updates an item's display name
func (r *PostgresItemRepository) Rename(ctx context.Context, id, userID, name string) (*models.Item, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
		RETURNING %s
	`, r.tables.Items, itemColumns)

	item, err := scanItem(GetExecutor(ctx, r.pool).QueryRow(ctx, query, name, time.Now(), id, userID))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("rename item: %w", err)
	}

	return item, nil
}

// DeleteByID removes a row. A row deleted by a concurrent call yields
// found=false, not an error.
func (r *PostgresItemRepository) DeleteByID(ctx context.Context, id, userID string) (bool, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Items)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Path,
		&item.Size,
		&item.Type,
		&item.FileURL,
		&item.RemoteID,
		&item.ThumbnailURL,
		&item.UserID,
		&item.ParentID,
		&item.IsFolder,
		&item.IsStarred,
		&item.IsTrash,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
