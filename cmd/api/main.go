package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	domainconfig "github.com/AlotfyDev/ArchiNote/domain/config"
	"github.com/AlotfyDev/ArchiNote/infrastructure/config"
	"github.com/AlotfyDev/ArchiNote/infrastructure/di"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()
	logger := container.Logger

	handler, err := container.HTTPHandler()
	if err != nil {
		logger.Fatal("Failed to build router", zap.Error(err))
	}

	if err := container.RestoreGraph(ctx); err != nil {
		logger.Fatal("Refusing to start without the stored graph", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("store", cfg.StoreBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.WatchDomainConfig {
		watcher, err := config.NewDomainConfigWatcher(cfg.DomainConfigPath, cfg.Environment, logger)
		if err != nil {
			logger.Fatal("Failed to watch domain config", zap.Error(err))
		}
		watcher.OnChange(func(dc *domainconfig.DomainConfig) {
			if err := container.Service.ApplyConfig(dc); err != nil {
				logger.Error("Failed to apply domain config", zap.Error(err))
			}
		})
		g.Go(func() error {
			watcher.Run()
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			watcher.Stop()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		// Persist the graph before the store is closed by cleanup
		if err := container.Service.Save(shutdownCtx, cfg.GraphID); err != nil {
			logger.Error("Failed to save graph on shutdown", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}

	_ = logger.Sync()
	log.Println("Server stopped")
}
