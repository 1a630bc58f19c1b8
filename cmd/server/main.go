package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmuslimabdulj/goat-collab/internal/ai"
	"github.com/mmuslimabdulj/goat-collab/internal/auth"
	"github.com/mmuslimabdulj/goat-collab/internal/config"
	httpHandler "github.com/mmuslimabdulj/goat-collab/internal/delivery/http"
	"github.com/mmuslimabdulj/goat-collab/internal/delivery/ws"
	"github.com/mmuslimabdulj/goat-collab/internal/middleware"
	"github.com/mmuslimabdulj/goat-collab/internal/store"
	"github.com/mmuslimabdulj/goat-collab/internal/usecase"
)

func main() {
	// Load .env file (ignore error if not exists, e.g. in production)
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := cfg.Logger()

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	db, err := store.Open(store.Options{Dir: cfg.DataDir}, log)
	if err != nil {
		return err
	}
	defer db.Close()

	var generator usecase.Generator = ai.NewOffline()
	generatorName := "offline"
	if cfg.AIAPIKey != "" {
		generator = ai.NewGemini(&http.Client{}, ai.GeminiConfig{
			APIKey:      cfg.AIAPIKey,
			Model:       cfg.AIModel,
			BaseURL:     cfg.AIBaseURL,
			Temperature: cfg.AITemperature,
		})
		generatorName = cfg.AIModel
	} else {
		log.Warn("AI_API_KEY not set, using offline generator")
	}

	// Initialize dependencies
	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	rooms := ws.NewRoomManager(log)
	interceptor := usecase.NewInterceptor(generator, rooms, cfg.AITimeout, log)
	collaborators := usecase.NewCollaborators(db, rooms, cfg.StoreTimeout, log)
	workspace := usecase.NewWorkspace(
		interceptor,
		usecase.NewFileTreeSync(db, rooms, cfg.StoreTimeout, cfg.MaxFileTreeBytes, log),
		collaborators,
		log,
	)

	baseCtx, cancelConns := context.WithCancel(context.Background())
	defer cancelConns()

	handler := httpHandler.NewHandler(httpHandler.Dependencies{
		Rooms:         rooms,
		Admission:     usecase.NewAdmission(verifier, db, log),
		Events:        workspace,
		Collaborators: collaborators,
		Projects:      usecase.NewProjects(db),
		Verifier:      verifier,
	}, httpHandler.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		GeneratorName:  generatorName,
		BaseContext:    baseCtx,
		Client: ws.ClientOptions{
			SendBufferSize: cfg.SendBufferSize,
			MaxMessageSize: cfg.MaxMessageSize,
			MessageRate:    config.Limit(cfg.RateLimitMessages),
		},
	}, log)

	limiters := httpHandler.Limiters{
		API:       middleware.NewIPRateLimiter(config.Limit(cfg.RateLimitAPI), burst(cfg.RateLimitAPI)),
		WebSocket: middleware.NewIPRateLimiter(config.Limit(cfg.RateLimitWS), burst(cfg.RateLimitWS)),
	}
	defer limiters.API.Close()
	defer limiters.WebSocket.Close()

	// Create server with timeouts
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(limiters),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("GOAT collab running", "addr", "http://localhost:"+cfg.Port, "generator", generatorName)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return err
	}
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	// Hijacked websocket connections are not tracked by Shutdown
	cancelConns()
	rooms.Shutdown()

	done := make(chan struct{})
	go func() {
		interceptor.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("Pending generations abandoned")
	}

	log.Info("Server exited gracefully")
	return nil
}

// burst allows short spikes of twice the steady rate
func burst(perSecond float64) int {
	return max(int(perSecond*2), 1)
}
