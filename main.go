// Drive Intranet
// Copyright (C) 2025  Drive Intranet Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drive-intranet/internal/api"
	"github.com/drive-intranet/internal/auth"
	"github.com/drive-intranet/internal/config"
	"github.com/drive-intranet/internal/drive"
	"github.com/drive-intranet/internal/index"
	"github.com/drive-intranet/internal/scheduler"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// app holds the wired components of the service
type app struct {
	router    http.Handler
	scheduler *scheduler.Scheduler
	index     *index.Manager
	sessions  *auth.Sessions
}

func newApp(cfg *config.Config, verifier auth.IDTokenVerifier) *app {
	driveClient := drive.NewClient(cfg.Drive)
	indexManager := index.NewManager(*cfg, driveClient, index.NewStore(cfg.Index.TTL))

	sessions := auth.NewSessions(cfg.Session.TTL)
	authHandler := auth.NewHandler(cfg, verifier, sessions)

	return &app{
		router:    api.NewServer(cfg, driveClient, indexManager, authHandler).Router(),
		scheduler: scheduler.New(cfg.Index.RefreshInterval, sessions, indexManager),
		index:     indexManager,
		sessions:  sessions,
	}
}

func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logrus.Debugf("No env file at %s, using process environment", path)
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	logrus.Debugf("Loaded environment from %s", path)
	return nil
}

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to configuration file")
		envPath    = flag.String("env-file", ".env", "Path to a .env file loaded before the configuration")
	)
	flag.Parse()

	if err := loadEnvFile(*envPath); err != nil {
		logrus.Fatalf("%v", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	// Set log level
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)

	logrus.Info("Starting Drive Intranet")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	verifier, err := auth.NewOIDCVerifier(ctx, cfg.Google.IssuerURL, cfg.Google.ClientID)
	if err != nil {
		logrus.Fatalf("Failed to initialise ID token verification: %v", err)
	}

	application := newApp(cfg, verifier)
	logrus.Infof("Serving folder %s (max depth %d)", cfg.Drive.RootFolderID, cfg.Drive.MaxDepth)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      application.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Start scheduler
	schedulerDone := make(chan struct{})
	go func() {
		application.scheduler.Start(ctx)
		close(schedulerDone)
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logrus.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	select {
	case <-schedulerDone:
	case <-shutdownCtx.Done():
		logrus.Warn("Scheduler did not stop in time")
	}
}
