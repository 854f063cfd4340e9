package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/dhyey2075/droply/internal/domain"
	"github.com/dhyey2075/droply/internal/domain/models"
	"github.com/dhyey2075/droply/internal/domain/repositories"
	"github.com/dhyey2075/droply/internal/filetypes"
)

// ObjectStore is the remote media host holding the bytes behind file items.
// Folders have no remote object.
type ObjectStore interface {
	// DeleteObject removes the remote object. Callers treat failures as
	// best-effort: they are reported, never fatal.
	DeleteObject(ctx context.Context, remoteID string) error
}

// ItemService owns the item hierarchy: creation, rename, listing, and the
// cascading delete of folder subtrees across the database and the remote
// object store.
type ItemService struct {
	items     repositories.ItemRepository
	store     ObjectStore
	txManager repositories.TransactionManager
	policy    *filetypes.Registry
	logger    *slog.Logger
}

// NewItemService creates a new item service
func NewItemService(
	items repositories.ItemRepository,
	store ObjectStore,
	txManager repositories.TransactionManager,
	policy *filetypes.Registry,
	logger *slog.Logger,
) *ItemService {
	return &ItemService{
		items:     items,
		store:     store,
		txManager: txManager,
		policy:    policy,
		logger:    logger,
	}
}

// Subtree is the full set of descendants below a folder, partitioned into
// files and folders. The requested folder itself is not included.
type Subtree struct {
	Files   []models.Item // descendant files, remote object refs included
	Folders []string      // descendant folder ids
}

// FileIDs returns the ids of all descendant files.
func (s *Subtree) FileIDs() []string {
	ids := make([]string, len(s.Files))
	for i, f := range s.Files {
		ids[i] = f.ID
	}
	return ids
}

// RemoteWarning records a remote object that could not be purged during a
// delete. The local rows are removed regardless; the warning exists so the
// failure is observable instead of vanishing into a log line.
type RemoteWarning struct {
	ItemID   string `json:"itemId"`
	RemoteID string `json:"fileId"`
	Reason   string `json:"reason"`
}

// DeleteResult reports the outcome of a delete operation.
type DeleteResult struct {
	Removed  int             `json:"removed"`
	Warnings []RemoteWarning `json:"warnings,omitempty"`
}

// CollectSubtree walks the parent relation downward from folderID and
// returns every descendant at every depth, each visited exactly once.
//
// The traversal is an explicit work queue rather than recursion: the
// accumulator is scoped to this call, and call depth stays bounded on
// pathologically deep trees. A folder id that does not exist or is owned by
// someone else simply yields an empty branch; whether the root of a deletion
// exists is the caller's check, not the collector's.
//
// Termination relies on the parent relation being acyclic, which the create
// and rename paths preserve (neither can re-parent an item). A corrupted
// cyclic graph is not detected here.
func (s *ItemService) CollectSubtree(ctx context.Context, userID, folderID string) (*Subtree, error) {
	subtree := &Subtree{}
	queue := []string{folderID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		children, err := s.items.ListChildren(ctx, current, userID)
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", current, err)
		}

		for _, child := range children {
			if child.IsFolder {
				subtree.Folders = append(subtree.Folders, child.ID)
				queue = append(queue, child.ID)
			} else {
				subtree.Files = append(subtree.Files, child)
			}
		}
	}

	return subtree, nil
}

// DeleteFolder removes a folder together with its entire subtree.
//
// Collection completes before any deletion starts, so no folder is removed
// while its children are still unenumerated. Remote objects are then purged
// best-effort, and finally every collected row plus the target folder row is
// removed in a single transaction. A remote-store outage therefore never
// blocks freeing the namespace; a crash can only orphan remote objects
// (wasted storage), never leave live rows pointing at purged objects.
func (s *ItemService) DeleteFolder(ctx context.Context, userID, folderID string) (*DeleteResult, error) {
	if folderID == models.RootFolderID {
		return nil, &domain.ValidationError{Message: "the root folder cannot be deleted"}
	}

	target, err := s.items.GetByID(ctx, folderID, userID)
	if err != nil {
		return nil, err
	}
	if !target.IsFolder {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("item %s is not a folder", folderID)}
	}

	subtree, err := s.CollectSubtree(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}

	warnings := s.purgeRemoteObjects(ctx, subtree.Files)

	result := &DeleteResult{Warnings: warnings}
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folderRows := append([]string{folderID}, subtree.Folders...)
		for _, id := range folderRows {
			found, err := s.items.DeleteByID(txCtx, id, userID)
			if err != nil {
				return err
			}
			if found {
				result.Removed++
			}
		}

		for _, file := range subtree.Files {
			found, err := s.items.DeleteByID(txCtx, file.ID, userID)
			if err != nil {
				return err
			}
			if found {
				result.Removed++
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder deleted",
		"id", folderID,
		"name", target.Name,
		"user_id", userID,
		"rows_removed", result.Removed,
		"remote_failures", len(result.Warnings),
	)

	return result, nil
}

// DeleteFile removes a single file: best-effort remote delete, then the
// local row. The row goes away even when the remote delete failed.
func (s *ItemService) DeleteFile(ctx context.Context, userID, fileID string) (*DeleteResult, error) {
	target, err := s.items.GetByID(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}
	if target.IsFolder {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("item %s is a folder", fileID)}
	}

	warnings := s.purgeRemoteObjects(ctx, []models.Item{*target})

	found, err := s.items.DeleteByID(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{Warnings: warnings}
	if found {
		result.Removed = 1
	}

	s.logger.Info("file deleted",
		"id", fileID,
		"name", target.Name,
		"user_id", userID,
		"remote_failures", len(warnings),
	)

	return result, nil
}

// purgeRemoteObjects attempts to delete the remote object behind every file.
// Failures are logged and collected; nothing here is fatal.
func (s *ItemService) purgeRemoteObjects(ctx context.Context, files []models.Item) []RemoteWarning {
	var warnings []RemoteWarning
	for _, file := range files {
		if file.RemoteID == "" {
			continue
		}
		if err := s.store.DeleteObject(ctx, file.RemoteID); err != nil {
			s.logger.Warn("remote object delete failed",
				"item_id", file.ID,
				"remote_id", file.RemoteID,
				"error", err,
			)
			warnings = append(warnings, RemoteWarning{
				ItemID:   file.ID,
				RemoteID: file.RemoteID,
				Reason:   err.Error(),
			})
		}
	}
	return warnings
}

// Rename updates an item's display name without touching its id or position.
func (s *ItemService) Rename(ctx context.Context, userID, itemID, newName string) (*models.Item, error) {
	newName = strings.TrimSpace(newName)
	if err := validateItemName(newName); err != nil {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("invalid name: %v", err)}
	}

	item, err := s.items.Rename(ctx, itemID, userID, newName)
	if err != nil {
		return nil, err
	}

	s.logger.Info("item renamed", "id", itemID, "name", newName, "user_id", userID)

	return item, nil
}

// CreateFolder creates an empty folder under the given parent. The root
// sentinel is a valid parent and skips the existence check since no row
// backs it.
func (s *ItemService) CreateFolder(ctx context.Context, userID, parentID, name string) (*models.Item, error) {
	name = strings.TrimSpace(name)
	if err := validateItemName(name); err != nil {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("invalid folder name: %v", err)}
	}

	if parentID == "" {
		parentID = models.RootFolderID
	}
	if parentID != models.RootFolderID {
		parent, err := s.items.GetByID(ctx, parentID, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, &domain.ValidationError{Message: "parent folder not found"}
			}
			return nil, err
		}
		if !parent.IsFolder {
			return nil, &domain.ValidationError{Message: "parent is not a folder"}
		}
	}

	folder := &models.Item{
		Name:     name,
		Path:     fmt.Sprintf("/folders/%s/%s", userID, uuid.NewString()),
		Type:     "folder",
		UserID:   userID,
		ParentID: parentID,
		IsFolder: true,
	}

	if err := s.items.Insert(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"user_id", userID,
		"parent_id", parentID,
	)

	return folder, nil
}

// UploadRequest describes a completed remote upload to record as a file row.
type UploadRequest struct {
	Name         string `json:"name"`
	Path         string `json:"filePath"`
	Size         int64  `json:"size"`
	Type         string `json:"fileType"`
	FileURL      string `json:"url"`
	RemoteID     string `json:"fileId"`
	ThumbnailURL string `json:"thumbnailUrl"`
	ParentID     string `json:"parentId"`
}

// RegisterUpload records a file whose bytes already landed in the remote
// object store. The upload itself goes browser-to-CDN; this only creates the
// metadata row, after checking the declared type and size against the upload
// policy.
func (s *ItemService) RegisterUpload(ctx context.Context, userID string, req *UploadRequest) (*models.Item, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.FileURL, validation.Required),
		validation.Field(&req.RemoteID, validation.Required),
	); err != nil {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("invalid upload: %v", err)}
	}

	if err := s.policy.Check(req.Type, req.Size); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	parentID := req.ParentID
	if parentID == "" {
		parentID = models.RootFolderID
	}
	if parentID != models.RootFolderID {
		parent, err := s.items.GetByID(ctx, parentID, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, &domain.ValidationError{Message: "parent folder not found"}
			}
			return nil, err
		}
		if !parent.IsFolder {
			return nil, &domain.ValidationError{Message: "parent is not a folder"}
		}
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Untitled"
	}
	path := req.Path
	if path == "" {
		path = fmt.Sprintf("/droply/%s/%s", userID, name)
	}

	file := &models.Item{
		Name:         name,
		Path:         path,
		Size:         req.Size,
		Type:         req.Type,
		FileURL:      req.FileURL,
		RemoteID:     req.RemoteID,
		ThumbnailURL: req.ThumbnailURL,
		UserID:       userID,
		ParentID:     parentID,
	}

	if err := s.items.Insert(ctx, file); err != nil {
		return nil, err
	}

	s.logger.Info("upload recorded",
		"id", file.ID,
		"name", file.Name,
		"user_id", userID,
		"size", file.Size,
	)

	return file, nil
}

// List returns the user's full flat item list. The dashboard filters it
// client-side against the navigation trail.
func (s *ItemService) List(ctx context.Context, userID string) ([]models.Item, error) {
	return s.items.ListByUser(ctx, userID)
}

func validateItemName(name string) error {
	return validation.Validate(name,
		validation.Required,
		validation.Length(1, 255),
	)
}
