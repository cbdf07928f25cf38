package http

import (
	"log/slog"
	"os"
	"strings"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/config"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// NewLogger builds the ECS-formatted JSON logger shared by the request logger and the services.
func NewLogger(app config.AppConfig) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       parseLevel(app.LogLevel),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-ledger"),
		slog.String("version", "v1.0.0"),
		slog.String("env", app.Env),
	)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func NewRouter(
	app config.AppConfig,
	logger *slog.Logger,
	JWTService jwt.Service,
	consolidationHandler ConsolidationHandler,
	counterHandler CounterHandler,
	variableItemHandler VariableItemHandler,
	factsHandler FactsHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()

	origins := app.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwt.Resolver{}))

			r.Route("/consolidations", func(r chi.Router) {
				r.Get("/", consolidationHandler.List)
				r.Get("/{id}", consolidationHandler.GetByID)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", consolidationHandler.Consolidate)
					r.Post("/batch", consolidationHandler.ConsolidateMonth)

					r.Delete("/{id}", consolidationHandler.Delete)
					r.Get("/{id}/audit", consolidationHandler.AuditTrail)
					r.Post("/{id}/validate", consolidationHandler.Validate)
					r.Post("/{id}/reopen", consolidationHandler.Reopen)
					r.Post("/{id}/corrections", consolidationHandler.CorrectField)
					r.Post("/{id}/variable-items/{itemID}/correction", consolidationHandler.CorrectVariableItem)
					r.Post("/{id}/export", consolidationHandler.MarkExported)
					r.Post("/{id}/sent-to-accountant", consolidationHandler.MarkSentToAccountant)
					r.Post("/{id}/archive", consolidationHandler.Archive)
				})
			})

			r.Route("/employees/{employeeID}", func(r chi.Router) {
				r.Get("/consolidations/{yearMonth}", consolidationHandler.GetByEmployeeMonth)
				r.Get("/counters/{kind}/{periodKey}", counterHandler.Balance)
				r.Get("/facts/{yearMonth}", factsHandler.Get)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/counters/{kind}/{periodKey}/adjustments", counterHandler.Adjust)
					r.Put("/facts/{yearMonth}", factsHandler.Record)
				})
			})

			r.With(middleware.AdminOnly).Get("/exports/{yearMonth}", consolidationHandler.Export)

			r.Route("/variable-items", func(r chi.Router) {
				r.Get("/", variableItemHandler.List)
				r.Get("/{id}", variableItemHandler.GetByID)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", variableItemHandler.Create)
					r.Put("/{id}", variableItemHandler.Update)
					r.Delete("/{id}", variableItemHandler.Delete)
					r.Post("/{id}/validate", variableItemHandler.Validate)
				})
			})

			r.Get("/notifications", notificationHandler.List)
			r.Get("/notifications/unread-count", notificationHandler.UnreadCount)
			r.Post("/notifications/read", notificationHandler.MarkAsRead)
			r.Post("/notifications/read-all", notificationHandler.MarkAllAsRead)
			r.Get("/notifications/sse-token", notificationHandler.GetSSEToken)
		})

		// SSE authenticates with its own short-lived token
		r.Get("/notifications/stream", notificationHandler.Stream)
	})
	return r
}
