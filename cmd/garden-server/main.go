package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"garden-planner/internal/app"
	"garden-planner/internal/clock"
	"garden-planner/internal/config"
	"garden-planner/internal/httpapi"
	"garden-planner/internal/logging"
	"garden-planner/internal/telegram"
)

const (
	shutdownTimeout   = 10 * time.Second
	maintenanceEvery  = 24 * time.Hour
	metricsRetainDays = 90
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(logging.Options{Verbose: os.Getenv("GARDEN_DEBUG") != ""})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.RequireAPI(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	mux := http.NewServeMux()
	httpapi.NewServer(a.Planner(), []byte(cfg.APIJWTSecret), logger,
		httpapi.WithLocale(cfg.Locale),
		httpapi.WithHealth(a.SysHealth),
	).Register(mux)

	sessions := telegram.NewSessionRepository(a.DB().SQL, clock.Real{}, telegram.DefaultSessionTTL)
	var bot *telegram.Bot
	if cfg.TelegramEnabled() {
		cmds := telegram.NewCommands(a.Planner(), sessions, a.Metrics(), a.SysHealth, cfg.AdminTelegramID, logger.Named("telegram"))
		bot, err = telegram.NewBot(cfg, cmds, logger.Named("telegram"))
		if err != nil {
			return err
		}
		bot.RegisterHandlers(mux)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.Bool("telegram", bot != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if bot != nil {
			bot.Wait()
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(maintenanceEvery)
		defer ticker.Stop()
		for {
			maintain(gctx, a, sessions, logger)
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	return g.Wait()
}

// maintain drops expired chat sessions and old metrics.
func maintain(ctx context.Context, a *app.App, sessions *telegram.SessionRepository, logger *zap.Logger) {
	if n, err := sessions.CleanupExpired(ctx); err != nil {
		logger.Warn("session cleanup failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("expired sessions removed", zap.Int64("count", n))
	}
	if n, err := a.Metrics().Cleanup(ctx, metricsRetainDays); err != nil {
		logger.Warn("metrics cleanup failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("old metrics removed", zap.Int64("count", n))
	}
}
