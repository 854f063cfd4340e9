package models

import "time"

// RootFolderID is the sentinel parent id for top-level items. No row with
// this id ever exists; it only appears on the parent side of the relation.
const RootFolderID = "00000000-0000-0000-0000-000000000000"

// Item is a single row in the user's hierarchy. Files and folders share the
// row shape, discriminated by IsFolder. A folder has no backing remote
// object; a file always references exactly one via RemoteID once created.
type Item struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	Type         string    `json:"type"`
	FileURL      string    `json:"fileUrl"`
	RemoteID     string    `json:"fileId"` // ImageKit file id, empty for folders
	ThumbnailURL string    `json:"thumbnailUrl"`
	UserID       string    `json:"userId"`
	ParentID     string    `json:"parentId"`
	IsFolder     bool      `json:"isFolder"`
	IsStarred    bool      `json:"isStarred"`
	IsTrash      bool      `json:"isTrash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
