package api

import (
	"gitgud_server/internal/api/handler"
	"gitgud_server/internal/app/service"
	"gitgud_server/internal/common/security"
	"gitgud_server/internal/platform/config"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	importService *service.ImportService,
	problemService *service.ProblemService,
	exportService *service.ExportService,
	contestService *service.ContestService,
	leaderboardService *service.LeaderboardService,
	userService *service.UserService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// The frontend is served from its own origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.AppConfig.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Verifies the externally issued bearer token and puts claims in context;
	// enforcement happens per-route via middleware.Authenticator.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		importHandler := handler.NewImportHandler(importService)
		// Raw adapter passthrough: /codeforces/user-solves, /kattis/user-solves
		importHandler.RegisterSolveRoutes(v1)
		v1.Route("/import", importHandler.RegisterImportRoutes)

		problemHandler := handler.NewProblemHandler(problemService, exportService)
		v1.Route("/problems", problemHandler.RegisterRoutes)

		contestHandler := handler.NewContestHandler(contestService)
		v1.Route("/contests", contestHandler.RegisterRoutes)

		leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)
		v1.Route("/leaderboard", leaderboardHandler.RegisterRoutes)

		userHandler := handler.NewUserHandler(userService)
		v1.Route("/me", userHandler.RegisterRoutes)
	})

	return r
}
