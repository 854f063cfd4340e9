package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/dhyey2075/droply/internal/domain"
	"github.com/dhyey2075/droply/internal/domain/models"
	"github.com/dhyey2075/droply/internal/domain/repositories"
)

// OneDriveService links OneDrive accounts and lists their files through the
// Microsoft Graph API.
type OneDriveService struct {
	cfg    *oauth2.Config
	graph  *graphClient
	tokens repositories.DriveTokenRepository
	logger *slog.Logger
}

// NewOneDriveService creates a new OneDrive service. appURL is the public
// base URL the OAuth callback is registered under.
func NewOneDriveService(clientID, clientSecret, appURL string, tokens repositories.DriveTokenRepository, logger *slog.Logger) *OneDriveService {
	return &OneDriveService{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  appURL + "/api/onedrive/callback",
			Endpoint:     microsoft.AzureADEndpoint("common"),
			Scopes:       []string{"Files.Read", "Files.ReadWrite", "offline_access"},
		},
		graph:  newGraphClient(),
		tokens: tokens,
		logger: logger,
	}
}

// AuthURL builds the consent URL for linking, with the user id as state.
func (s *OneDriveService) AuthURL(userID string) string {
	return s.cfg.AuthCodeURL(userID, oauth2.SetAuthURLParam("response_mode", "query"))
}

// HandleCallback exchanges the authorization code and stores the resulting
// token for the user.
func (s *OneDriveService) HandleCallback(ctx context.Context, userID, code string) error {
	tok, err := s.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("onedrive token exchange: %w", err)
	}

	token := fromOAuth2(models.ProviderOneDrive, userID, tok, "")
	if err := s.tokens.Upsert(ctx, token); err != nil {
		return err
	}

	s.logger.Info("onedrive linked",
		"user_id", userID,
		"has_refresh_token", token.RefreshToken != "",
	)

	return nil
}

// ListFiles lists the children of a OneDrive folder ("root" for the top
// level), mapped into the dashboard's item shape.
func (s *OneDriveService) ListFiles(ctx context.Context, userID, folderID string) ([]models.DriveEntry, error) {
	if folderID == "" {
		folderID = "root"
	}

	tok, err := freshToken(ctx, s.cfg, s.tokens, models.ProviderOneDrive, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("onedrive not connected: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}

	items, err := s.graph.ListChildren(ctx, tok.AccessToken, folderID)
	if err != nil {
		return nil, fmt.Errorf("list onedrive files: %w", err)
	}

	entries := make([]models.DriveEntry, 0, len(items))
	for _, item := range items {
		isFolder := item.Folder != nil
		entryType := "file"
		if isFolder {
			entryType = "folder"
		} else if item.File != nil && item.File.MimeType != "" {
			entryType = item.File.MimeType
		}

		entries = append(entries, models.DriveEntry{
			ID:        item.ID,
			Name:      item.Name,
			Size:      item.Size,
			Type:      entryType,
			FileURL:   item.WebURL,
			ParentID:  folderID,
			IsFolder:  isFolder,
			CreatedAt: item.CreatedDateTime,
			UpdatedAt: item.LastModifiedDateTime,
		})
	}

	return entries, nil
}

// Unlink discards the stored OneDrive credentials for the user.
func (s *OneDriveService) Unlink(ctx context.Context, userID string) error {
	if err := s.tokens.Delete(ctx, models.ProviderOneDrive, userID); err != nil {
		return err
	}

	s.logger.Info("onedrive unlinked", "user_id", userID)

	return nil
}

// Status reports whether the user has linked OneDrive.
func (s *OneDriveService) Status(ctx context.Context, userID string) (*Status, error) {
	token, err := s.tokens.Get(ctx, models.ProviderOneDrive, userID)
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
