package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/dhyey2075/droply/internal/domain"
	"github.com/dhyey2075/droply/internal/domain/models"
	"github.com/dhyey2075/droply/internal/domain/repositories"
	"github.com/dhyey2075/droply/internal/filetypes"
)

// fakeItemRepo is an in-memory ItemRepository with the same ownership
// scoping as the Postgres implementation.
type fakeItemRepo struct {
	items []*models.Item
}

func (r *fakeItemRepo) Insert(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	clone := *item
	r.items = append(r.items, &clone)
	return nil
}

func (r *fakeItemRepo) GetByID(ctx context.Context, id, userID string) (*models.Item, error) {
	for _, item := range r.items {
		if item.ID == id && item.UserID == userID {
			clone := *item
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
}

func (r *fakeItemRepo) ListChildren(ctx context.Context, parentID, userID string) ([]models.Item, error) {
	var children []models.Item
	for _, item := range r.items {
		if item.ParentID == parentID && item.UserID == userID {
			children = append(children, *item)
		}
	}
	return children, nil
}

func (r *fakeItemRepo) ListByUser(ctx context.Context, userID string) ([]models.Item, error) {
	var out []models.Item
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) Rename(ctx context.Context, id, userID, name string) (*models.Item, error) {
	for _, item := range r.items {
		if item.ID == id && item.UserID == userID {
			item.Name = name
			clone := *item
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
}

func (r *fakeItemRepo) DeleteByID(ctx context.Context, id, userID string) (bool, error) {
	for i, item := range r.items {
		if item.ID == id && item.UserID == userID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeItemRepo) count() int { return len(r.items) }

// fakeObjectStore records deletions and can be told to fail specific ids.
type fakeObjectStore struct {
	deleted []string
	failOn  map[string]error
}

func (s *fakeObjectStore) DeleteObject(ctx context.Context, remoteID string) error {
	if err, ok := s.failOn[remoteID]; ok {
		return err
	}
	s.deleted = append(s.deleted, remoteID)
	return nil
}

// fakeTxManager runs the function directly; the fake repo has no
// transactions to join.
type fakeTxManager struct{}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func newTestService(t *testing.T, repo *fakeItemRepo, store *fakeObjectStore) *ItemService {
	t.Helper()
	policy, err := filetypes.NewRegistry()
	if err != nil {
		t.Fatalf("load upload policy: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewItemService(repo, store, &fakeTxManager{}, policy, logger)
}

const testUser = "user_abc123"

// seedTree builds:
//
//	root
//	└── folderA
//	    ├── folderB
//	    │   ├── file1
//	    │   └── file2
//	    └── file3
func seedTree(repo *fakeItemRepo) (folderA, folderB string) {
	folderA = "11111111-1111-1111-1111-111111111111"
	folderB = "22222222-2222-2222-2222-222222222222"
	repo.items = append(repo.items,
		&models.Item{ID: folderA, Name: "A", UserID: testUser, ParentID: models.RootFolderID, IsFolder: true},
		&models.Item{ID: folderB, Name: "B", UserID: testUser, ParentID: folderA, IsFolder: true},
		&models.Item{ID: "file-1", Name: "one.png", RemoteID: "ik-1", UserID: testUser, ParentID: folderB},
		&models.Item{ID: "file-2", Name: "two.png", RemoteID: "ik-2", UserID: testUser, ParentID: folderB},
		&models.Item{ID: "file-3", Name: "three.png", RemoteID: "ik-3", UserID: testUser, ParentID: folderA},
	)
	return folderA, folderB
}

func TestCollectSubtree(t *testing.T) {
	repo := &fakeItemRepo{}
	folderA, folderB := seedTree(repo)
	svc := newTestService(t, repo, &fakeObjectStore{})

	subtree, err := svc.CollectSubtree(context.Background(), testUser, folderA)
	if err != nil {
		t.Fatalf("CollectSubtree() error = %v", err)
	}

	gotFiles := subtree.FileIDs()
	sort.Strings(gotFiles)
	wantFiles := []string{"file-1", "file-2", "file-3"}
	if len(gotFiles) != len(wantFiles) {
		t.Fatalf("files = %v, want %v", gotFiles, wantFiles)
	}
	for i := range wantFiles {
		if gotFiles[i] != wantFiles[i] {
			t.Errorf("files = %v, want %v", gotFiles, wantFiles)
			break
		}
	}

	if len(subtree.Folders) != 1 || subtree.Folders[0] != folderB {
		t.Errorf("folders = %v, want [%s]", subtree.Folders, folderB)
	}
}

func TestCollectSubtreeEmptyBranches(t *testing.T) {
	repo := &fakeItemRepo{}
	folderA, _ := seedTree(repo)
	svc := newTestService(t, repo, &fakeObjectStore{})

	tests := []struct {
		name     string
		userID   string
		folderID string
	}{
		{"nonexistent folder", testUser, "99999999-9999-9999-9999-999999999999"},
		{"foreign owner", "user_other", folderA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subtree, err := svc.CollectSubtree(context.Background(), tt.userID, tt.folderID)
			if err != nil {
				t.Fatalf("CollectSubtree() error = %v", err)
			}
			if len(subtree.Files) != 0 || len(subtree.Folders) != 0 {
				t.Errorf("subtree = %+v, want empty", subtree)
			}
		})
	}
}

func TestDeleteFolderCascades(t *testing.T) {
	repo := &fakeItemRepo{}
	store := &fakeObjectStore{}
	folderA, _ := seedTree(repo)
	svc := newTestService(t, repo, store)

	result, err := svc.DeleteFolder(context.Background(), testUser, folderA)
	if err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}

	if result.Removed != 5 {
		t.Errorf("Removed = %d, want 5", result.Removed)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", result.Warnings)
	}
	if repo.count() != 0 {
		t.Errorf("rows remaining = %d, want 0", repo.count())
	}

	sort.Strings(store.deleted)
	want := []string{"ik-1", "ik-2", "ik-3"}
	if len(store.deleted) != len(want) {
		t.Fatalf("remote deletes = %v, want %v", store.deleted, want)
	}
	for i := range want {
		if store.deleted[i] != want[i] {
			t.Errorf("remote deletes = %v, want %v", store.deleted, want)
			break
		}
	}
}

func TestDeleteFolderRemoteFailureStillRemovesRows(t *testing.T) {
	repo := &fakeItemRepo{}
	store := &fakeObjectStore{failOn: map[string]error{"ik-2": errors.New("cdn unavailable")}}
	folderA, _ := seedTree(repo)
	svc := newTestService(t, repo, store)

	result, err := svc.DeleteFolder(context.Background(), testUser, folderA)
	if err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}

	if result.Removed != 5 {
		t.Errorf("Removed = %d, want 5", result.Removed)
	}
	if repo.count() != 0 {
		t.Errorf("rows remaining = %d, want 0", repo.count())
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly one", result.Warnings)
	}
	w := result.Warnings[0]
	if w.ItemID != "file-2" || w.RemoteID != "ik-2" || w.Reason == "" {
		t.Errorf("warning = %+v, want file-2/ik-2 with a reason", w)
	}
}

func TestDeleteFolderGuards(t *testing.T) {
	repo := &fakeItemRepo{}
	folderA, _ := seedTree(repo)
	svc := newTestService(t, repo, &fakeObjectStore{})

	tests := []struct {
		name     string
		userID   string
		folderID string
		wantErr  error
	}{
		{"root sentinel", testUser, models.RootFolderID, domain.ErrValidation},
		{"not a folder", testUser, "file-3", domain.ErrValidation},
		{"missing folder", testUser, "99999999-9999-9999-9999-999999999999", domain.ErrNotFound},
		{"foreign owner", "user_other", folderA, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := repo.count()
			_, err := svc.DeleteFolder(context.Background(), tt.userID, tt.folderID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DeleteFolder() error = %v, want %v", err, tt.wantErr)
			}
			if repo.count() != before {
				t.Errorf("rows changed from %d to %d on failed delete", before, repo.count())
			}
		})
	}
}

func TestDeleteFolderTwice(t *testing.T) {
	repo := &fakeItemRepo{}
	folderA, _ := seedTree(repo)
	svc := newTestService(t, repo, &fakeObjectStore{})

	if _, err := svc.DeleteFolder(context.Background(), testUser, folderA); err != nil {
		t.Fatalf("first DeleteFolder() error = %v", err)
	}

	_, err := svc.DeleteFolder(context.Background(), testUser, folderA)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second DeleteFolder() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteEmptyFolder(t *testing.T) {
	repo := &fakeItemRepo{}
	store := &fakeObjectStore{}
	empty := &models.Item{ID: "empty-1", Name: "Empty", UserID: testUser, ParentID: models.RootFolderID, IsFolder: true}
	repo.items = append(repo.items, empty)
	svc := newTestService(t, repo, store)

	result, err := svc.DeleteFolder(context.Background(), testUser, empty.ID)
	if err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}
	if result.Removed != 1 {
		t.Errorf("Removed = %d, want 1", result.Removed)
	}
	if len(store.deleted) != 0 {
		t.Errorf("remote deletes = %v, want none", store.deleted)
	}
}

func TestDeleteFile(t *testing.T) {
	repo := &fakeItemRepo{}
	store := &fakeObjectStore{}
	folderA, _ := seedTree(repo)
	svc := newTestService(t, repo, store)

	result, err := svc.DeleteFile(context.Background(), testUser, "file-3")
	if err != nil {
		t.Fatalf("DeleteFile() error = %v", err)
	}
	if result.Removed != 1 {
		t.Errorf("Removed = %d, want 1", result.Removed)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "ik-3" {
		t.Errorf("remote deletes = %v, want [ik-3]", store.deleted)
	}

	if _, err := svc.DeleteFile(context.Background(), testUser, folderA); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("DeleteFile(folder) error = %v, want ErrValidation", err)
	}
}

func TestCreateFolder(t *testing.T) {
	repo := &fakeItemRepo{}
	folderA, _ := seedTree(repo)
	svc := newTestService(t, repo, &fakeObjectStore{})

	tests := []struct {
		name       string
		parentID   string
		folderName string
		wantErr    error
	}{
		{"under root sentinel", "", "Documents", nil},
		{"under existing folder", folderA, "Nested", nil},
		{"blank name", "", "   ", domain.ErrValidation},
		{"missing parent", "99999999-9999-9999-9999-999999999999", "Orphan", domain.ErrValidation},
		{"file as parent", "file-3", "Impossible", domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folder, err := svc.CreateFolder(context.Background(), testUser, tt.parentID, tt.folderName)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateFolder() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if !folder.IsFolder {
				t.Error("created item is not a folder")
			}
			if folder.ID == "" {
				t.Error("created folder has no id")
			}
			wantParent := tt.parentID
			if wantParent == "" {
				wantParent = models.RootFolderID
			}
			if folder.ParentID != wantParent {
				t.Errorf("ParentID = %s, want %s", folder.ParentID, wantParent)
			}
		})
	}
}

func TestRename(t *testing.T) {
	repo := &fakeItemRepo{}
	folderA, _ := seedTree(repo)
	svc := newTestService(t, repo, &fakeObjectStore{})

	item, err := svc.Rename(context.Background(), testUser, folderA, "  Renamed  ")
	if err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if item.Name != "Renamed" {
		t.Errorf("Name = %q, want %q", item.Name, "Renamed")
	}

	if _, err := svc.Rename(context.Background(), testUser, folderA, "   "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Rename(blank) error = %v, want ErrValidation", err)
	}
	if _, err := svc.Rename(context.Background(), "user_other", folderA, "Stolen"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Rename(foreign) error = %v, want ErrNotFound", err)
	}
}

func TestRegisterUpload(t *testing.T) {
	repo := &fakeItemRepo{}
	folderA, _ := seedTree(repo)
	svc := newTestService(t, repo, &fakeObjectStore{})

	tests := []struct {
		name    string
		req     *UploadRequest
		wantErr error
	}{
		{
			"valid image",
			&UploadRequest{Name: "pic.png", Size: 1 << 20, Type: "image/png", FileURL: "https://ik.example/pic.png", RemoteID: "ik-9", ParentID: folderA},
			nil,
		},
		{
			"missing url",
			&UploadRequest{Name: "pic.png", Size: 1 << 20, Type: "image/png", RemoteID: "ik-9"},
			domain.ErrValidation,
		},
		{
			"missing remote id",
			&UploadRequest{Name: "pic.png", Size: 1 << 20, Type: "image/png", FileURL: "https://ik.example/pic.png"},
			domain.ErrValidation,
		},
		{
			"oversize image",
			&UploadRequest{Name: "huge.png", Size: 26 << 20, Type: "image/png", FileURL: "https://ik.example/huge.png", RemoteID: "ik-10"},
			domain.ErrValidation,
		},
		{
			"rejected type",
			&UploadRequest{Name: "tool.exe", Size: 1 << 20, Type: "application/x-msdownload", FileURL: "https://ik.example/tool.exe", RemoteID: "ik-11"},
			domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := svc.RegisterUpload(context.Background(), testUser, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("RegisterUpload() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if file.ID == "" || file.IsFolder {
				t.Errorf("file = %+v, want a non-folder row with an id", file)
			}
		})
	}
}

func TestRegisterUploadDefaultsName(t *testing.T) {
	repo := &fakeItemRepo{}
	svc := newTestService(t, repo, &fakeObjectStore{})

	file, err := svc.RegisterUpload(context.Background(), testUser, &UploadRequest{
		Size:     1024,
		Type:     "image/jpeg",
		FileURL:  "https://ik.example/anon.jpg",
		RemoteID: "ik-20",
	})
	if err != nil {
		t.Fatalf("RegisterUpload() error = %v", err)
	}
	if file.Name != "Untitled" {
		t.Errorf("Name = %q, want %q", file.Name, "Untitled")
	}
	if file.ParentID != models.RootFolderID {
		t.Errorf("ParentID = %s, want root sentinel", file.ParentID)
	}
}
