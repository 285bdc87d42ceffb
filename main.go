package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/zots0127/docdesk/pkg/config"
	"github.com/zots0127/docdesk/pkg/logging"
)

func main() {
	configFile := flag.String("config", config.PathFromEnv(), "Configuration file path")
	envFile := flag.String("env", ".env", "Dotenv file loaded before environment overrides")
	flag.Parse()

	cm := config.NewConfigManager(*envFile)
	cfg, err := cm.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logging: %v\n", err)
		os.Exit(1)
	}
	cm.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cm, logger); err != nil {
		logger.WithError(err).Fatal("docdesk stopped")
	}
}

func run(ctx context.Context, cm *config.ConfigManager, logger *logrus.Logger) error {
	cfg := cm.GetConfig()

	svc, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	cm.Watch(func(c *config.Config) {
		svc.projects.SetOptions(c.List.Options())
		if level, err := logrus.ParseLevel(c.Logging.Level); err == nil {
			logger.SetLevel(level)
		}
	})
	if cm.Path() != "" {
		if _, statErr := os.Stat(cm.Path()); statErr == nil {
			watcher, err := config.NewConfigWatcher(cm, logger)
			if err != nil {
				return err
			}
			if err := watcher.Start(); err != nil {
				logger.WithError(err).Warn("Config hot reload disabled")
			}
			defer watcher.Stop()
		}
	}

	if err := svc.StartBackground(ctx); err != nil {
		return err
	}

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      svc.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":   server.Addr,
			"source": svc.snapshots.Name(),
		}).Info("Starting docdesk")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received, shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("docdesk stopped")
	return nil
}
