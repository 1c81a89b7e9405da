package server

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/taskdeck/taskdeck-go/internal/config"
	"github.com/taskdeck/taskdeck-go/internal/crypto"
	"github.com/taskdeck/taskdeck-go/internal/handler"
	"github.com/taskdeck/taskdeck-go/internal/middleware"
	"github.com/taskdeck/taskdeck-go/internal/repository"
	"github.com/taskdeck/taskdeck-go/internal/service"
)

// New builds the full HTTP handler: JSON API under /api/v1 guarded by
// bearer tokens, and the server-rendered UI guarded by the session
// cookie plus CSRF double-submit.
func New(cfg config.Config, db *sql.DB, limiterStore middleware.RateLimitStore) http.Handler {
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	taskService := service.NewTaskService(taskRepo)

	authHandler := handler.NewAuthHandler(authService)
	taskHandler := handler.NewTaskHandler(taskService)

	csrfCfg := middleware.CSRFConfig{
		Signer:     crypto.NewCSRFSigner(cfg.CSRFSecret),
		CookieName: cfg.CSRFCookieName,
		HeaderName: cfg.CSRFHeaderName,
		FormField:  cfg.CSRFFormField,
		TokenTTL:   cfg.CSRFTokenTTL,
		Enforce:    cfg.CSRFEnforce,
	}
	webHandler := handler.NewWebHandler(authService, taskService, csrfCfg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", cfg.CSRFHeaderName},
		ExposedHeaders:   []string{"X-Total-Count", "Location"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// JSON API. Bearer tokens are not ambient credentials, so no CSRF
	// here; login and registration are rate limited per caller IP.
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.With(middleware.RateLimit(limiterStore, "register", cfg.RateLimitRegister, cfg.RateLimitWindow)).
				Post("/auth/register", authHandler.HandleRegister)
			r.With(middleware.RateLimit(limiterStore, "login", cfg.RateLimitLogin, cfg.RateLimitWindow)).
				Post("/auth/login", authHandler.HandleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(authService))
			r.Get("/auth/me", authHandler.HandleMe)

			r.Get("/tasks", taskHandler.HandleList)
			r.Post("/tasks", taskHandler.HandleCreate)
			r.Post("/tasks/bulk_delete", taskHandler.HandleBulkDelete)
			r.Post("/tasks/bulk_complete", taskHandler.HandleBulkComplete)
			r.Get("/tasks/{task_id}", taskHandler.HandleGet)
			r.Put("/tasks/{task_id}", taskHandler.HandleReplace)
			r.Patch("/tasks/{task_id}", taskHandler.HandleUpdate)
			r.Delete("/tasks/{task_id}", taskHandler.HandleDelete)
		})
	})

	// Web UI. CSRF runs before the handlers, so on the login form a
	// valid token pair with bad credentials still yields 401.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF(csrfCfg))

		r.Get("/login", webHandler.HandleLoginForm)
		r.With(middleware.RateLimit(limiterStore, "login", cfg.RateLimitLogin, cfg.RateLimitWindow)).
			Post("/login", webHandler.HandleLogin)
		r.Post("/logout", webHandler.HandleLogout)

		r.Get("/", webHandler.HandleIndex)
		r.Post("/ui/tasks", webHandler.HandleCreateTask)
		r.Post("/ui/tasks/{task_id}/delete", webHandler.HandleDeleteTask)
		r.Post("/ui/bulk_delete", webHandler.HandleBulkDelete)
		r.Post("/ui/bulk_complete", webHandler.HandleBulkComplete)
	})

	return r
}
