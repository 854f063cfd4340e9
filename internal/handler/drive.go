package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dhyey2075/droply/internal/domain/models"
	"github.com/dhyey2075/droply/internal/drive"
	"github.com/dhyey2075/droply/internal/httputil"
)

// DriveProvider is the surface both external drive services expose.
type DriveProvider interface {
	AuthURL(userID string) string
	HandleCallback(ctx context.Context, userID, code string) error
	ListFiles(ctx context.Context, userID, folderID string) ([]models.DriveEntry, error)
	Status(ctx context.Context, userID string) (*drive.Status, error)
	Unlink(ctx context.Context, userID string) error
}

// DriveHandler serves the linking and browsing endpoints of one external
// drive provider. Droply mounts one instance per provider.
type DriveHandler struct {
	provider DriveProvider
	// name is the provider slug used in redirect query params, e.g. "gdrive".
	name   string
	appURL string
	logger *slog.Logger
}

// NewDriveHandler creates a drive handler for one provider.
func NewDriveHandler(provider DriveProvider, name, appURL string, logger *slog.Logger) *DriveHandler {
	return &DriveHandler{
		provider: provider,
		name:     name,
		appURL:   appURL,
		logger:   logger,
	}
}

// Auth returns the provider consent URL for the authenticated user
// GET /api/{provider}/auth
func (h *DriveHandler) Auth(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"url": h.provider.AuthURL(userID),
	})
}

// Callback completes the OAuth flow. The provider redirects the browser here,
// so there is no session; the user id comes back in the state parameter. The
// browser is then bounced to the dashboard with the outcome in the query.
// GET /api/{provider}/callback
func (h *DriveHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		h.logger.Warn("oauth consent denied", "provider", h.name, "error", errMsg)
		h.redirect(w, r, "error")
		return
	}
	if code == "" || state == "" {
		h.redirect(w, r, "error")
		return
	}

	if err := h.provider.HandleCallback(r.Context(), state, code); err != nil {
		h.logger.Error("oauth callback failed", "provider", h.name, "error", err)
		h.redirect(w, r, "error")
		return
	}

	h.redirect(w, r, "connected")
}

// Files lists the contents of a provider folder
// GET /api/{provider}/files?folderId={id}
func (h *DriveHandler) Files(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entries, err := h.provider.ListFiles(r.Context(), userID, r.URL.Query().Get("folderId"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"files": entries,
	})
}

// Status reports whether the user has linked this provider
// GET /api/{provider}/status
func (h *DriveHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status, err := h.provider.Status(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, status)
}

// Unlink disconnects the provider for the authenticated user
// DELETE /api/{provider}/unlink
func (h *DriveHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.provider.Unlink(r.Context(), userID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "Drive disconnected successfully",
	})
}

func (h *DriveHandler) redirect(w http.ResponseWriter, r *http.Request, outcome string) {
	http.Redirect(w, r, h.appURL+"/dashboard?"+h.name+"="+outcome, http.StatusTemporaryRedirect)
}
