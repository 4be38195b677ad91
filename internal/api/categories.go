package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/back2u/internal/model"
	"github.com/erazemk/back2u/internal/store"
)

// CategoriesHandler handles the public category endpoints.
type CategoriesHandler struct {
	DB *sql.DB
}

type categoryRequest struct {
	Name string `json:"name"`
}

// List handles GET /api/categories. Public.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
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

// Create handles POST /api/categories (admin only, wired via middleware).
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	claims := GetClaims(r.Context())
	slog.Info("category created", "category_id", category.ID, "name", category.Name, "admin_id", claims.UserID)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"message":     "category created",
		"category_id": category.ID,
	})
}
