package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/polycache/polycache/configs"
	"github.com/polycache/polycache/internal/application/coordinator"
	"github.com/polycache/polycache/internal/infrastructure/backends"
	"github.com/polycache/polycache/internal/infrastructure/httpserver"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting polycache coordinator...")

	coordinatorConfig := coordinator.Config{
		DefaultTTL:      cfg.Cache.DefaultTTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
		Registries:      registryConfigs(cfg),
	}

	coord, err := coordinator.Start(context.Background(), coordinatorConfig, backends.Openers(), logger)
	if err != nil {
		logger.Fatal("Failed to start coordinator:", err)
	}
	defer func() {
		if err := coord.Stop(); err != nil {
			logger.Warn("Coordinator shutdown error:", err)
		}
	}()

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
	}

	server := httpserver.NewServer(serverConfig, coord, logger)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}

// registryConfigs merges the per-kind config sections into the opaque option
// maps each backend opener understands.
func registryConfigs(cfg *config.Config) []coordinator.RegistryConfig {
	regs := make([]coordinator.RegistryConfig, 0, len(cfg.Cache.Registries))
	for _, spec := range cfg.Cache.Registries {
		rc := coordinator.RegistryConfig{Name: spec.Name, Kind: spec.Kind}
		switch spec.Kind {
		case "redis":
			rc.Options = map[string]string{
				"addr":     cfg.Redis.Addr,
				"password": cfg.Redis.Password,
				"db":       strconv.Itoa(cfg.Redis.DB),
				"prefix":   cfg.Redis.Prefix,
			}
		case "sql":
			rc.Options = map[string]string{
				"driver": cfg.SQL.Driver,
				"dsn":    cfg.SQL.DSN,
			}
		case "bolt":
			rc.Options = map[string]string{
				"path": cfg.Bolt.Path,
			}
		case "s3":
			rc.Options = map[string]string{
				"bucket":   cfg.ObjectStore.Bucket,
				"prefix":   cfg.ObjectStore.Prefix,
				"region":   cfg.ObjectStore.Region,
				"endpoint": cfg.ObjectStore.Endpoint,
			}
		}
		regs = append(regs, rc)
	}
	return regs
}
