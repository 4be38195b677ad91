package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/back2u/internal/imaging"
	"github.com/erazemk/back2u/internal/model"
	"github.com/erazemk/back2u/internal/store"
)

// ItemsHandler handles item reporting, listing and claiming.
type ItemsHandler struct {
	DB *sql.DB
}

type reportItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CategoryID  int64  `json:"category_id"`
}

type claimItemRequest struct {
	VerificationDetails string `json:"verification_details"`
}

// List handles GET /api/items. Public: browsing reported items does not
// require an account.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ItemFilter{
		Status:          q.Get("status"),
		Search:          strings.TrimSpace(q.Get("search")),
		IncludeResolved: strings.EqualFold(q.Get("include_resolved"), "true"),
	}

	items, err := store.ListItems(r.Context(), h.DB, filter)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Report handles POST /api/items.
func (h *ItemsHandler) Report(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req reportItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" || req.Status == "" || req.CategoryID == 0 {
		jsonError(w, http.StatusBadRequest, "title, status and category_id required")
		return
	}
	if !model.ValidReportStatus(req.Status) {
		jsonError(w, http.StatusBadRequest, "status must be 'lost' or 'found'")
		return
	}

	category, err := store.GetCategory(r.Context(), h.DB, req.CategoryID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if category == nil {
		jsonError(w, http.StatusBadRequest, "unknown category")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, claims.UserID, req.CategoryID, req.Title, req.Description, req.Status)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		jsonError(w, http.StatusInternalServerError, "could not submit report")
		return
	}

	slog.Info("item reported", "item_id", item.ID, "user_id", claims.UserID, "status", item.Status)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"message": "item reported successfully",
		"id":      item.ID,
	})
}

// Claim handles POST /api/items/{id}/claim.
func (h *ItemsHandler) Claim(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req claimItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	details := strings.TrimSpace(req.VerificationDetails)
	if details == "" {
		jsonError(w, http.StatusBadRequest, "verification details required")
		return
	}

	claim, err := store.SubmitClaim(r.Context(), h.DB, itemID, claims.UserID, details)
	switch {
	case errors.Is(err, store.ErrItemNotFound):
		jsonError(w, http.StatusNotFound, "item not found")
		return
	case errors.Is(err, store.ErrItemResolved):
		jsonError(w, http.StatusBadRequest, "item already resolved")
		return
	case errors.Is(err, store.ErrDuplicateClaim):
		jsonError(w, http.StatusBadRequest, "you already have a pending claim for this item")
		return
	case err != nil:
		slog.Error("failed to submit claim", "item_id", itemID, "error", err)
		jsonError(w, http.StatusInternalServerError, "could not submit claim")
		return
	}

	slog.Info("claim submitted", "claim_id", claim.ID, "item_id", itemID, "claimant_id", claims.UserID)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"message": "claim submitted successfully",
		"id":      claim.ID,
	})
}

// UploadPhoto handles PUT /api/items/{id}/photo.
func (h *ItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, itemID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	// Only the reporter may attach a photo.
	claims := GetClaims(r.Context())
	if claims == nil || claims.UserID != item.ReportedBy {
		jsonError(w, http.StatusForbidden, "only the reporter can upload a photo")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	photo, err := imaging.Process(r.Body)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetItemPhoto(r.Context(), h.DB, itemID, photo.Data, photo.MIME); err != nil {
		slog.Error("failed to save photo", "item_id", itemID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save photo")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/items/{id}/photo. Pass ?size=thumb for a
// card-sized rendition.
func (h *ItemsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemPhoto(r.Context(), h.DB, itemID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	if r.URL.Query().Get("size") == "thumb" {
		thumb, err := imaging.Thumbnail(data)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to render thumbnail")
			return
		}
		data, mime = thumb.Data, thumb.MIME
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
