package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"budgettracker/internal/auth"
	"budgettracker/internal/config"
	"budgettracker/internal/handler"
	"budgettracker/internal/hub"
	"budgettracker/internal/logging"
	"budgettracker/internal/service"
	"budgettracker/internal/watcher"
)

func main() {
	configPath := flag.String("config", "", "config file path (overrides $BUDGET_CONFIG)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	writeConfig := flag.Bool("write-config", false, "write a default config file to -config (or the user config dir) and exit")
	flag.Parse()

	if *writeConfig {
		path, err := config.WriteDefaultConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return
	}

	if *configPath != "" {
		os.Setenv(config.EnvConfigPath, *configPath)
	}

	cfg, path, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger, level, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if path == "" {
		logger.Info("no config file found, using defaults and environment")
	} else {
		logger.Info("config loaded", zap.String("path", path))
	}
	logger.Info(cfg.Summary())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, path, logger, level); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, configPath string, logger *zap.Logger, level zap.AtomicLevel) error {
	repo, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer repo.Close()
	logger.Info("store opened", zap.String("driver", cfg.Store.Driver))

	eventBus := service.NewEventBus()
	budgetSvc := service.NewBudgetService(repo, eventBus, logger)

	if cfg.Attachments.Enabled() {
		signer, err := openPresigner(ctx, cfg)
		if err != nil {
			return fmt.Errorf("attachments: %w", err)
		}
		budgetSvc.SetAttachmentSigner(signer)
		logger.Info("attachment uploads enabled", zap.String("bucket", cfg.Attachments.Bucket))
	}

	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.UserClaim)
	if err != nil {
		return err
	}

	sseHub := hub.New(logger)
	cors := handler.NewCORSPolicy(cfg.CORS.AllowedOrigins)

	mux := handler.NewRouter(
		handler.NewBudgetHandler(budgetSvc, logger),
		sseHub,
		verifier.Middleware(handler.Unauthorized),
	)

	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: handler.Chain(mux,
			handler.Recover(logger),
			handler.CORS(cors),
			handler.Logger(logger),
		),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  cfg.Server.IdleTimeout.Duration(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sseHub.Run(gctx)
	})

	// Connect event bus to SSE hub
	events := make(chan service.Event, 100)
	eventBus.Subscribe(events)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case event := <-events:
				sseHub.Broadcast(event.UserID, event)
			}
		}
	})

	if configPath != "" {
		w := watcher.New(configPath, func() {
			reload(configPath, level, cors, logger)
		}, logger)
		g.Go(func() error {
			return w.Watch(gctx)
		})
	}

	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// reload applies the live-reloadable settings from the config file
func reload(path string, level zap.AtomicLevel, cors *handler.CORSPolicy, logger *zap.Logger) {
	cfg, _, err := config.LoadFromPath(path)
	if err != nil {
		logger.Warn("config reload failed, keeping current settings", zap.Error(err))
		return
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		logger.Warn("config reload failed, keeping current settings", zap.Error(err))
		return
	}

	if err := logging.SetLevel(level, cfg.Log.Level); err != nil {
		logger.Warn("ignoring log level", zap.Error(err))
	}
	cors.SetAllowedOrigins(cfg.CORS.AllowedOrigins)

	logger.Info("config reloaded",
		zap.String("log_level", cfg.Log.Level),
		zap.Strings("cors_origins", cfg.CORS.AllowedOrigins))
}
