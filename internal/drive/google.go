package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googledrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/dhyey2075/droply/internal/domain"
	"github.com/dhyey2075/droply/internal/domain/models"
	"github.com/dhyey2075/droply/internal/domain/repositories"
)

const gdriveFolderMime = "application/vnd.google-apps.folder"

// GoogleService links Google Drive accounts and lists their files.
type GoogleService struct {
	cfg    *oauth2.Config
	tokens repositories.DriveTokenRepository
	logger *slog.Logger
}

// NewGoogleService creates a new Google Drive service. appURL is the public
// base URL the OAuth callback is registered under.
func NewGoogleService(clientID, clientSecret, appURL string, tokens repositories.DriveTokenRepository, logger *slog.Logger) *GoogleService {
	return &GoogleService{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  appURL + "/api/gdrive/callback",
			Endpoint:     google.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/drive.readonly",
				"https://www.googleapis.com/auth/drive.metadata.readonly",
			},
		},
		tokens: tokens,
		logger: logger,
	}
}

// AuthURL builds the consent URL for linking. The user id rides along as the
// OAuth state so the callback can attribute the grant.
func (s *GoogleService) AuthURL(userID string) string {
	return s.cfg.AuthCodeURL(userID,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// HandleCallback exchanges the authorization code and stores the resulting
// token for the user.
func (s *GoogleService) HandleCallback(ctx context.Context, userID, code string) error {
	tok, err := s.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("google token exchange: %w", err)
	}

	token := fromOAuth2(models.ProviderGoogleDrive, userID, tok, "")
	if err := s.tokens.Upsert(ctx, token); err != nil {
		return err
	}

	s.logger.Info("google drive linked",
		"user_id", userID,
		"has_refresh_token", token.RefreshToken != "",
	)

	return nil
}

// ListFiles lists the children of a Google Drive folder ("root" for the top
// level), mapped into the dashboard's item shape.
func (s *GoogleService) ListFiles(ctx context.Context, userID, folderID string) ([]models.DriveEntry, error) {
	if folderID == "" {
		folderID = "root"
	}

	tok, err := freshToken(ctx, s.cfg, s.tokens, models.ProviderGoogleDrive, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("google drive not connected: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}

	svc, err := googledrive.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(tok)))
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}

	list, err := svc.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed = false", folderID)).
		Fields("files(id, name, size, mimeType, createdTime, modifiedTime, webViewLink, thumbnailLink)").
		OrderBy("folder, name").
		PageSize(100).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list google drive files: %w", err)
	}

	entries := make([]models.DriveEntry, 0, len(list.Files))
	for _, f := range list.Files {
		if f.Id == "" || f.Name == "" {
			continue
		}

		isFolder := f.MimeType == gdriveFolderMime
		entryType := f.MimeType
		if isFolder {
			entryType = "folder"
		}

		entries = append(entries, models.DriveEntry{
			ID:           f.Id,
			Name:         f.Name,
			Size:         f.Size,
			Type:         entryType,
			FileURL:      f.WebViewLink,
			ThumbnailURL: f.ThumbnailLink,
			ParentID:     folderID,
			IsFolder:     isFolder,
			CreatedAt:    parseRFC3339(f.CreatedTime),
			UpdatedAt:    parseRFC3339(f.ModifiedTime),
		})
	}

	return entries, nil
}

// Unlink discards the stored Google Drive credentials for the user.
func (s *GoogleService) Unlink(ctx context.Context, userID string) error {
	if err := s.tokens.Delete(ctx, models.ProviderGoogleDrive, userID); err != nil {
		return err
	}

	s.logger.Info("google drive unlinked", "user_id", userID)

	return nil
}

// Status reports whether the user has linked Google Drive.
func (s *GoogleService) Status(ctx context.Context, userID string) (*Status, error) {
	token, err := s.tokens.Get(ctx, models.ProviderGoogleDrive, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &Status{}, nil
		}
		return nil, err
	}

	return &Status{
		Connected:       true,
		HasRefreshToken: token.RefreshToken != "",
	}, nil
}

func parseRFC3339(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
