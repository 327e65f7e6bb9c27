package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/madadgarapp/listings-api/internal/application/device"
	"github.com/madadgarapp/listings-api/internal/application/item"
	"github.com/madadgarapp/listings-api/internal/application/media"
	"github.com/madadgarapp/listings-api/internal/application/notification"
	"github.com/madadgarapp/listings-api/internal/application/session"
	"github.com/madadgarapp/listings-api/internal/application/user"
	"github.com/madadgarapp/listings-api/internal/config"
	"github.com/madadgarapp/listings-api/internal/domain"
	"github.com/madadgarapp/listings-api/internal/transport/http/handler"
	appmiddleware "github.com/madadgarapp/listings-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	deviceSvc := device.NewService(deps.DeviceTokenRepo, deps.Logger)
	sessionSvc := session.NewService(session.ServiceDeps{
		SessionRepo:     deps.SessionRepo,
		UserRepo:        deps.UserRepo,
		Devices:         deviceSvc,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: cfg.RefreshTokenDur,
		Logger:          deps.Logger,
	})
	userSvc := user.NewService(deps.UserRepo)
	itemSvc := item.NewService(deps.ItemRepo, deps.Outbox)
	notifSvc := notification.NewService(notification.ServiceDeps{
		NotificationRepo: deps.NotificationRepo,
		DeviceRepo:       deps.DeviceTokenRepo,
		UserRepo:         deps.UserRepo,
		Logger:           deps.Logger,
	})
	mediaSvc := media.NewService(deps.ImageStore, deps.VideoStore, deps.Logger)

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(sessionSvc)
	userH := handler.NewUserHandler(userSvc)
	itemH := handler.NewItemHandler(itemSvc)
	notifH := handler.NewNotificationHandler(notifSvc, deps.Events)
	deviceH := handler.NewDeviceHandler(deviceSvc)
	mediaH := handler.NewMediaHandler(mediaSvc)
	pushH := handler.NewPushHandler(deps.Dispatcher, deps.SendLogRepo)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/users/me", userH.GetCurrent)
			r.Get("/users/{id}", userH.Get)

			r.Get("/items", itemH.List)
			r.Post("/items", itemH.Create)
			r.Get("/items/mine", itemH.ListMine)
			r.Get("/items/{id}", itemH.Get)
			r.Delete("/items/{id}", itemH.Delete)

			r.Post("/media/images", mediaH.UploadImages)
			r.Post("/media/video", mediaH.UploadVideo)

			r.Get("/notifications", notifH.List)
			r.Get("/notifications/unread-count", notifH.UnreadCount)
			r.Put("/notifications/{id}/read", notifH.MarkRead)
			r.Delete("/notifications/{id}", notifH.Delete)

			r.Get("/devices/tokens", deviceH.List)
			r.Post("/devices/tokens", deviceH.Register)
			r.Delete("/devices/tokens", deviceH.Deactivate)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Post("/push/send", pushH.Send)
				r.Get("/push/logs", pushH.Logs)
				r.Post("/notifications/system-alert", notifH.SystemAlert)
				r.Delete("/users/{id}", userH.Delete)
			})
		})
	})

	return r
}
