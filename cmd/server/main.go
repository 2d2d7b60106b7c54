package main

import (
	"context"
	"gitgud_server/internal/api"
	"gitgud_server/internal/app/platform"
	"gitgud_server/internal/app/service"
	"gitgud_server/internal/common/security"
	"gitgud_server/internal/domain/repository"
	"gitgud_server/internal/platform/cache"
	"gitgud_server/internal/platform/config"
	"gitgud_server/internal/platform/database"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	// 1. Load Configuration
	config.Load()
	log.Println("Configuration loaded.")

	// 2. Initialize JWT verification
	security.InitJWT()
	log.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()

	// 4. Initialize Redis
	cache.ConnectRedis()
	defer cache.CloseRedis()

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	solveRepo := repository.NewPgSolveRepository(database.DB)
	contestRepo := repository.NewPgContestRepository(database.DB)
	leaderboardRepo := repository.NewPgLeaderboardRepository(database.DB)

	// 6. Platform adapters (outbound HTTP relies on the client defaults;
	// the chi Timeout middleware bounds the whole request instead)
	adapters := platform.NewRegistry(http.DefaultClient)

	// 7. Initialize Services
	importService := service.NewImportService(adapters, problemRepo, solveRepo, userRepo)
	problemService := service.NewProblemService(problemRepo, solveRepo)
	exportService := service.NewExportService(problemRepo)
	contestService := service.NewContestService(contestRepo)
	leaderboardService := service.NewLeaderboardService(leaderboardRepo, cache.RDB, config.AppConfig.LeaderboardCacheTTL)
	userService := service.NewUserService(userRepo)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(importService, problemService, exportService, contestService, leaderboardService, userService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
