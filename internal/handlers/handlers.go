package handlers

import (
	"BlogHub/internal/chatbot"
	"BlogHub/internal/config"
	"BlogHub/internal/middleware"
	"BlogHub/internal/service"
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	blogService *service.BlogService,
	bot *chatbot.Bot,
	ping func(context.Context) error,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	// X-Forwarded-For учитываем только за своим прокси, иначе лимит обходится подменой заголовка
	if config.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithRecover)
	// медиа не сжимаем: только текстовые типы
	r.Use(chimw.Compress(5, "application/json", "text/html", "text/css", "text/plain", "application/javascript", "image/svg+xml"))

	requireAuth := middleware.RequireAuth(config.AuthSecret, userService)
	limit := func(next http.Handler) http.Handler { return next }
	if config.RateLimitRPS > 0 {
		limit = middleware.RateLimit(config.RateLimitRPS, config.RateLimitBurst)
	}

	// Handlers
	authHandler := NewAuthHandler(userService, logger, config)
	userHandler := NewUserHandler(userService, logger)
	blogHandler := NewBlogHandler(blogService, logger, config)
	chatHandler := NewChatHandler(bot, logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler(ping))

		// Auth routes
		r.With(limit).Post("/auth/register", authHandler.Register)
		r.With(limit).Post("/auth/login", authHandler.Login)
		r.With(requireAuth).Get("/auth/me", authHandler.Me)

		// User routes
		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.With(middleware.RequireAdmin).Get("/", userHandler.List)
			r.Get("/{id}", userHandler.Get)
			r.Delete("/{id}", userHandler.Delete)
		})

		// Blog routes
		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", blogHandler.List)
			r.Get("/file/{id}", blogHandler.File)
			r.Get("/{id}", blogHandler.Get)
			r.Get("/{id}/comments", blogHandler.ListComments)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", blogHandler.Create)
				r.Put("/{id}", blogHandler.Update)
				r.Delete("/{id}", blogHandler.Delete)
				r.Post("/{id}/like", blogHandler.Like)
				r.Post("/{id}/comment", blogHandler.AddComment)
				r.Post("/{id}/comments", blogHandler.AddComment)
			})
		})

		r.With(limit).Post("/chatbot", chatHandler.Reply)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeMessage(w, http.StatusNotFound, "Route not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		})
	})

	r.NotFound(spaHandler(config.StaticDir))

	return &Handler{Router: r}
}
