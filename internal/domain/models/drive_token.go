package models

import "time"

// DriveProvider identifies a linked external storage provider.
type DriveProvider string

const (
	ProviderGoogleDrive DriveProvider = "gdrive"
	ProviderOneDrive    DriveProvider = "onedrive"
)

// DriveToken holds the OAuth credentials for one user's link to an external
// drive provider. One row per (provider, user).
type DriveToken struct {
	ID           string        `json:"id"`
	Provider     DriveProvider `json:"provider"`
	UserID       string        `json:"userId"`
	AccessToken  string        `json:"-"`
	RefreshToken string        `json:"-"`
	TokenType    string        `json:"tokenType"`
	Expiry       time.Time     `json:"expiryDate"`
	Scope        string        `json:"scope"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// Expired reports whether the access token has passed its expiry. Tokens
// without a recorded expiry are treated as still valid.
func (t *DriveToken) Expired(now time.Time) bool {
	return !t.Expiry.IsZero() && t.Expiry.Before(now)
}

// DriveEntry is one file or folder listed from an external provider, mapped
// into the same shape the dashboard uses for native items.
type DriveEntry struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	Type         string    `json:"type"`
	FileURL      string    `json:"fileUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	ParentID     string    `json:"parentId"`
	IsFolder     bool      `json:"isFolder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
