package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/back2u/internal/model"
	"github.com/erazemk/back2u/internal/notify"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, mailer notify.Mailer) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	itemsHandler := &ItemsHandler{DB: db}
	categoriesHandler := &CategoriesHandler{DB: db}
	adminHandler := &AdminHandler{DB: db, Mailer: mailer}
	notificationsHandler := &NotificationsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public: account creation and login.
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Items: browsing and photos are public, reporting and claiming need an
	// account.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{id}/photo", itemsHandler.GetPhoto)
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Report)))
	mux.Handle("POST /api/items/{id}/claim", authMW(http.HandlerFunc(itemsHandler.Claim)))
	mux.Handle("PUT /api/items/{id}/photo", authMW(http.HandlerFunc(itemsHandler.UploadPhoto)))

	// Categories: read (public), write (admin).
	mux.HandleFunc("GET /api/categories", categoriesHandler.List)
	mux.Handle("POST /api/categories", authMW(requireAdmin(http.HandlerFunc(categoriesHandler.Create))))

	// Admin: category management and claim resolution.
	mux.Handle("GET /api/admin/categories", authMW(requireAdmin(http.HandlerFunc(adminHandler.ListCategories))))
	mux.Handle("POST /api/admin/categories", authMW(requireAdmin(http.HandlerFunc(adminHandler.CreateCategory))))
	mux.Handle("PUT /api/admin/categories/{id}", authMW(requireAdmin(http.HandlerFunc(adminHandler.UpdateCategory))))
	mux.Handle("DELETE /api/admin/categories/{id}", authMW(requireAdmin(http.HandlerFunc(adminHandler.DeleteCategory))))
	mux.Handle("GET /api/admin/claims/pending", authMW(requireAdmin(http.HandlerFunc(adminHandler.PendingClaims))))
	mux.Handle("POST /api/admin/claims/resolve", authMW(requireAdmin(http.HandlerFunc(adminHandler.ResolveClaim))))

	// Notifications (own notifications only).
	mux.Handle("GET /api/notifications", authMW(http.HandlerFunc(notificationsHandler.List)))
	mux.Handle("PUT /api/notifications/{id}/read", authMW(http.HandlerFunc(notificationsHandler.MarkRead)))

	return mux
}
