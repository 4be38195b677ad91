package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/back2u/internal/model"
	"github.com/erazemk/back2u/internal/notify"
	"github.com/erazemk/back2u/internal/store"
)

// AdminHandler handles the admin-only endpoints: category management and
// claim resolution.
type AdminHandler struct {
	DB     *sql.DB
	Mailer notify.Mailer
}

type resolveClaimRequest struct {
	ClaimID        int64  `json:"claim_id"`
	ResolutionType string `json:"resolution_type"`
}

// ListCategories handles GET /api/admin/categories.
func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list categories", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	jsonResponse(w, http.StatusOK, categories)
}

// CreateCategory handles POST /api/admin/categories.
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		jsonError(w, http.StatusBadRequest, "category name required")
		return
	}

	category, err := store.CreateCategory(r.Context(), h.DB, name)
	if errors.Is(err, store.ErrCategoryExists) {
		jsonError(w, http.StatusConflict, "category name already exists")
		return
	}
	if err != nil {
		slog.Error("failed to create category", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]any{
		"message":     "category created",
		"category_id": category.ID,
	})
}

// UpdateCategory handles PUT /api/admin/categories/{id}.
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		jsonError(w, http.StatusBadRequest, "category name required")
		return
	}

	err = store.UpdateCategory(r.Context(), h.DB, id, name)
	switch {
	case errors.Is(err, store.ErrCategoryNotFound):
		jsonError(w, http.StatusNotFound, "category not found")
		return
	case errors.Is(err, store.ErrCategoryExists):
		jsonError(w, http.StatusConflict, "category name already exists")
		return
	case err != nil:
		slog.Error("failed to update category", "category_id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "category updated"})
}

// DeleteCategory handles DELETE /api/admin/categories/{id}. The category is
// removed together with its items and their claims, then the maintenance
// re-sequencing pass compacts primary keys across all tables.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	err = store.DeleteCategory(r.Context(), h.DB, id)
	switch {
	case errors.Is(err, store.ErrCategoryNotFound):
		jsonError(w, http.StatusNotFound, "category not found")
		return
	case err != nil:
		slog.Error("failed to delete category", "category_id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("category deleted", "category_id", id, "admin_id", claims.UserID)

	if err := store.Resequence(r.Context(), h.DB); err != nil {
		// The cascade delete already committed; only the ID compaction failed.
		slog.Error("maintenance re-sequencing failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "category deleted but maintenance failed")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// PendingClaims handles GET /api/admin/claims/pending.
func (h *AdminHandler) PendingClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := store.ListPendingClaims(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list pending claims", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list pending claims")
		return
	}
	if claims == nil {
		claims = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, claims)
}

// ResolveClaim handles POST /api/admin/claims/resolve. Approval and its item
// status change commit atomically; notification emails are dispatched
// afterwards and never fail the resolution.
func (h *AdminHandler) ResolveClaim(w http.ResponseWriter, r *http.Request) {
	adminClaims := GetClaims(r.Context())
	if adminClaims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req resolveClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ClaimID == 0 ||
		(req.ResolutionType != model.ResolutionApprove && req.ResolutionType != model.ResolutionReject) {
		jsonError(w, http.StatusBadRequest, "missing claim ID or invalid resolution type")
		return
	}

	claim, err := store.ResolveClaim(r.Context(), h.DB, req.ClaimID, req.ResolutionType)
	switch {
	case errors.Is(err, store.ErrClaimNotFound):
		jsonError(w, http.StatusNotFound, "claim not found")
		return
	case errors.Is(err, store.ErrClaimResolved):
		jsonError(w, http.StatusConflict, "claim already resolved")
		return
	case err != nil:
		slog.Error("failed to resolve claim", "claim_id", req.ClaimID, "error", err)
		jsonError(w, http.StatusInternalServerError, "database error during resolution")
		return
	}

	slog.Info("claim resolved", "claim_id", claim.ID, "resolution", req.ResolutionType, "admin_id", adminClaims.UserID)

	if req.ResolutionType == model.ResolutionApprove {
		notify.SendClaimResolvedEmails(r.Context(), h.DB, h.Mailer, claim.ItemID, claim.ClaimantID, adminClaims.UserID)
		jsonResponse(w, http.StatusOK, map[string]string{
			"message": "claim approved and resolved successfully",
		})
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "claim rejected"})
}
