package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"kanban-board.com/kanban-board/internal/auth"
	config "kanban-board.com/kanban-board/internal/configs"
	httpapi "kanban-board.com/kanban-board/internal/http"
	"kanban-board.com/kanban-board/internal/keystore"
	repository "kanban-board.com/kanban-board/internal/repositories"
	"kanban-board.com/kanban-board/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Migrates the schema and serves the kanban HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateServe(); err != nil {
			return err
		}

		database, err := config.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		if err := config.Migrate(database); err != nil {
			return err
		}

		store, closeStore, err := newKeystore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		userRepo := repository.NewUserRepository(database)
		boardRepo := repository.NewBoardRepository(database)
		columnRepo := repository.NewColumnRepository(database)
		taskRepo := repository.NewTaskRepository(database)

		authService := services.NewAuthService(
			userRepo,
			auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenLifetime()),
			store,
			cfg.IdentityCacheSize,
			cfg.IdentityCacheTTL(),
		)
		boardService := services.NewBoardService(database, boardRepo, columnRepo, taskRepo)
		columnService := services.NewColumnService(database, boardRepo, columnRepo, taskRepo)
		taskService := services.NewTaskService(database, boardRepo, columnRepo, taskRepo)

		opts := httpapi.Options{
			AllowedOrigin:      cfg.CORSAllowedOrigin,
			RequestTimeout:     cfg.RequestTimeout(),
			RateLimitPerMinute: cfg.RateLimit,
			Counter:            store,
		}
		e := httpapi.NewEcho(opts)
		handler := httpapi.NewHandler(database, authService, boardService, columnService, taskService)
		httpapi.Register(e, handler, opts)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			log.Infof("HTTP server listening on %s", cfg.AppURL())
			if err := e.Start(cfg.AppURL()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("server stopped: %v", err)
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Warnf("shutdown: %v", err)
		}

		log.Info("HTTP server shut down gracefully")
		return nil
	},
}

// newKeystore picks Redis when enabled so several instances share revoked
// tokens and rate limits.
func newKeystore(cfg config.Config) (keystore.Store, func(), error) {
	if !cfg.RedisEnabled {
		return keystore.NewMemoryStore(), func() {}, nil
	}

	client, err := config.NewRedisClient(cfg.RedisAddr())
	if err != nil {
		return nil, nil, err
	}
	log.Infof("using redis keystore at %s", cfg.RedisAddr())

	return keystore.NewRedisStore(client), client.Close, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
