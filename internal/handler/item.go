package handler

import (
	"log/slog"
	"net/http"

	"github.com/dhyey2075/droply/internal/httputil"
	"github.com/dhyey2075/droply/internal/service"
	"github.com/dhyey2075/droply/internal/storage/imagekit"
)

// ItemHandler handles item HTTP requests
type ItemHandler struct {
	items   *service.ItemService
	storage *imagekit.Client
	logger  *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(items *service.ItemService, storage *imagekit.Client, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		items:   items,
		storage: storage,
		logger:  logger,
	}
}

// deleteRequest is the shape both delete endpoints accept. The body user id
// must match the authenticated user; the mismatch check exists so a replayed
// request body cannot act across accounts.
type deleteRequest struct {
	ItemID string `json:"fileId"`
	UserID string `json:"userId"`
}

// requireBodyUser cross-checks the body-declared user against the session.
// Returns the user id, or "" after writing the error response.
func requireBodyUser(w http.ResponseWriter, r *http.Request, bodyUserID string) string {
	userID := httputil.GetUserID(r)
	if userID == "" || bodyUserID != userID {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return ""
	}
	return userID
}

// ListMedia returns the user's flat item list
// GET /api/media
func (h *ItemHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := h.items.List(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, items)
}

// RegisterUpload records a completed direct-to-CDN upload
// POST /api/upload
func (h *ItemHandler) RegisterUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImageKit *service.UploadRequest `json:"imagekit"`
		UserID   string                 `json:"userId"`
		ParentID string                 `json:"parentId"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ImageKit == nil || req.ImageKit.FileURL == "" {
		httputil.RespondError(w, http.StatusBadRequest, "invalid imagekit data")
		return
	}

	userID := requireBodyUser(w, r, req.UserID)
	if userID == "" {
		return
	}

	req.ImageKit.ParentID = req.ParentID
	item, err := h.items.RegisterUpload(r.Context(), userID, req.ImageKit)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "File uploaded successfully",
		"file":    item,
	})
}

// CreateFolder creates a new folder
// POST /api/folders/create
func (h *ItemHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		UserID   string `json:"userId"`
		ParentID string `json:"parentId"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := requireBodyUser(w, r, req.UserID)
	if userID == "" {
		return
	}

	folder, err := h.items.CreateFolder(r.Context(), userID, req.ParentID, req.Name)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Folder created successfully",
		"folder":  folder,
	})
}

// Rename renames a file or folder
// PATCH /api/rename
func (h *ItemHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID  string `json:"fileId"`
		NewName string `json:"newName"`
		UserID  string `json:"userId"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := requireBodyUser(w, r, req.UserID)
	if userID == "" {
		return
	}
	if req.ItemID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "item id is required")
		return
	}

	item, err := h.items.Rename(r.Context(), userID, req.ItemID, req.NewName)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	kind := "File"
	if item.IsFolder {
		kind = "Folder"
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": kind + " renamed successfully",
		"file":    item,
	})
}

// DeleteFile deletes a single file
// DELETE /api/delete-media
func (h *ItemHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := requireBodyUser(w, r, req.UserID)
	if userID == "" {
		return
	}
	if req.ItemID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "item id is required")
		return
	}

	result, err := h.items.DeleteFile(r.Context(), userID, req.ItemID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Media deleted successfully",
		"removed":  result.Removed,
		"warnings": result.Warnings,
	})
}

// DeleteFolder deletes a folder and its entire subtree
// DELETE /api/folders/delete
func (h *ItemHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := requireBodyUser(w, r, req.UserID)
	if userID == "" {
		return
	}
	if req.ItemID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder id is required")
		return
	}

	result, err := h.items.DeleteFolder(r.Context(), userID, req.ItemID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Folder and its contents deleted successfully",
		"removed":  result.Removed,
		"warnings": result.Warnings,
	})
}

// UploadAuth mints signed parameters for a browser-side upload
// GET /api/imagekit-auth
func (h *ItemHandler) UploadAuth(w http.ResponseWriter, r *http.Request) {
	if httputil.GetUserID(r) == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, h.storage.UploadAuthParams())
}

// HealthCheck reports liveness
// GET /health
func (h *ItemHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
