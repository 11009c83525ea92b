// Package httpapi exposes the services over HTTP: a chi router with the
// public auth endpoints, the cookie-authenticated /api surface and static
// file serving for the frontend.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avolkov/wardrobe/internal/logging"
	"github.com/avolkov/wardrobe/internal/server/auth"
	"github.com/avolkov/wardrobe/internal/server/catalog"
	"github.com/avolkov/wardrobe/internal/server/config"
	"github.com/avolkov/wardrobe/internal/server/sessions"
)

type Server struct {
	cfg      *config.Config
	logger   logging.Logger
	auth     *auth.Service
	catalog  *catalog.Service
	sessions sessions.Store
}

func NewServer(cfg *config.Config, logger logging.Logger, authService *auth.Service, catalogService *catalog.Service, sessionStore sessions.Store) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		auth:     authService,
		catalog:  catalogService,
		sessions: sessionStore,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)

	r.Post("/register", s.handleRegister)
	r.Get("/verify", s.handleVerifyRedirect)
	r.Get("/verify-email", s.handleVerifyEmail)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Post("/forgot-password", s.handleForgotPassword)
	r.Post("/reset-password", s.handleResetPassword)
	r.Post("/feedback", s.handleFeedback)

	r.Route("/api", func(api chi.Router) {
		api.Use(s.requireAuth)

		api.Get("/me", s.handleMe)
		api.Post("/update-name", s.handleUpdateName)
		api.Post("/update-username", s.handleUpdateUsername)
		api.Post("/change-password", s.handleChangePassword)
		api.Post("/resend-verification", s.handleResendVerification)
		api.Post("/upload-profile-pic", s.handleUploadProfilePic)
		api.Delete("/delete-account", s.handleDeleteAccount)

		api.Get("/sections", s.handleListSections)
		api.Post("/sections", s.handleCreateSection)
		api.Delete("/sections/{name}", s.handleDeleteSection)
		api.Post("/categories", s.handleAddCategory)
		api.Delete("/categories/{section}/{category}", s.handleRemoveCategory)

		api.Get("/dresses", s.handleListDresses)
		api.Post("/dresses", s.handleUploadDress)
		api.Put("/dresses/{id}", s.handleUpdateDress)
		api.Delete("/dresses/{id}", s.handleDeleteDress)
		api.Put("/dresses/{id}/favourite", s.handleToggleFavourite)
		api.Get("/favourites", s.handleListFavourites)
		api.Get("/search", s.handleSearch)

		api.Get("/stats", s.handleStats)
		api.Get("/backup", s.handleBackup)
		api.Post("/restore", s.handleRestore)
		api.Post("/reset-defaults", s.handleResetDefaults)

		api.Post("/feedback", s.handleFeedback)
	})

	if s.cfg.PublicDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.cfg.PublicDir)))
	}

	return r
}
