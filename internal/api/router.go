package api

import (
	"net/http"
	"time"

	"auth_api/internal/api/handler"
	"auth_api/internal/api/middleware"
	"auth_api/internal/app/service"
	"auth_api/internal/common/messages"
	"auth_api/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/sirupsen/logrus"
)

type RouterOptions struct {
	AllowedOrigins []string
	// UsersRequireAuth puts GET /auth/users behind token verification.
	UsersRequireAuth bool
}

func NewRouter(
	authService *service.AuthService,
	tokens *security.TokenIssuer,
	msgs *messages.Table,
	log logrus.FieldLogger,
	opts RouterOptions,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.RequestLogger(&chiMiddleware.DefaultLogFormatter{Logger: log, NoColor: true}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	// PUT and DELETE are allowed although no route uses them.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handler.NewAuthHandler(authService, msgs, log)
	var usersGuard []func(http.Handler) http.Handler
	if opts.UsersRequireAuth {
		usersGuard = append(usersGuard, jwtauth.Verifier(tokens.Auth()), middleware.Authenticator(msgs))
	}
	r.Route("/auth", func(ar chi.Router) {
		authHandler.RegisterRoutes(ar, usersGuard...)
	})

	return r
}
