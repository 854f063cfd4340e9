// Package drive links external storage providers (Google Drive, OneDrive) so
// their files can be browsed alongside native items. The providers are
// opaque token-issuing collaborators: this package only exchanges and
// refreshes OAuth tokens and lists folder children.
package drive

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/dhyey2075/droply/internal/domain"
	"github.com/dhyey2075/droply/internal/domain/models"
	"github.com/dhyey2075/droply/internal/domain/repositories"
)

// Status reports whether a provider is linked for a user.
type Status struct {
	Connected       bool `json:"connected"`
	HasRefreshToken bool `json:"hasRefreshToken"`
}

// toOAuth2 converts a stored token into the oauth2 shape.
func toOAuth2(t *models.DriveToken) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}

// fromOAuth2 maps an exchanged token back onto the stored row. A provider
// that omits the refresh token on renewal keeps the one already stored.
func fromOAuth2(provider models.DriveProvider, userID string, tok *oauth2.Token, previousRefresh string) *models.DriveToken {
	refresh := tok.RefreshToken
	if refresh == "" {
		refresh = previousRefresh
	}
	tokenType := tok.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &models.DriveToken{
		Provider:     provider,
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: refresh,
		TokenType:    tokenType,
		Expiry:       tok.Expiry,
		Scope:        "",
	}
}

// freshToken returns a usable access token for the user, refreshing and
// re-persisting it when expired. An expired token without a refresh token is
// a dead link and surfaces as ErrUnauthorized.
func freshToken(
	ctx context.Context,
	cfg *oauth2.Config,
	tokens repositories.DriveTokenRepository,
	provider models.DriveProvider,
	userID string,
) (*oauth2.Token, error) {
	stored, err := tokens.Get(ctx, provider, userID)
	if err != nil {
		return nil, err
	}

	current := toOAuth2(stored)
	if !stored.Expired(time.Now()) {
		return current, nil
	}

	if stored.RefreshToken == "" {
		return nil, fmt.Errorf("%s token expired and no refresh token available: %w", provider, domain.ErrUnauthorized)
	}

	refreshed, err := cfg.TokenSource(ctx, current).Token()
	if err != nil {
		return nil, fmt.Errorf("%s token refresh failed: %w", provider, domain.ErrUnauthorized)
	}

	next := fromOAuth2(provider, userID, refreshed, stored.RefreshToken)
	next.Scope = stored.Scope
	if err := tokens.Upsert(ctx, next); err != nil {
		return nil, fmt.Errorf("persist refreshed token: %w", err)
	}

	return refreshed, nil
}
