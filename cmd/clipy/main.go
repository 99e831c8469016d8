package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	httpAdapter "github.com/BankkRoll/clipy/internal/adapter/http"
	"github.com/BankkRoll/clipy/internal/adapter/sqlite"
	"github.com/BankkRoll/clipy/internal/adapter/ytdlp"
	"github.com/BankkRoll/clipy/internal/config"
	"github.com/BankkRoll/clipy/internal/procreg"
	"github.com/BankkRoll/clipy/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithField("error", err).Fatal("failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	logrus.WithFields(logrus.Fields{
		"port":          cfg.Port,
		"database":      cfg.DBPath,
		"downloadDir":   cfg.DownloadDir,
		"maxConcurrent": cfg.MaxConcurrent,
	}).Info("starting clipy")

	// Fail fast when yt-dlp is missing; ffmpeg is optional but worth a warning.
	deps, err := ytdlp.CheckDependencies(cfg.YTDLPPath)
	if err != nil {
		logrus.WithField("error", err).Fatal("dependency check failed")
	}
	logrus.WithField("path", deps.YTDLPPath).Debug("yt-dlp found")
	if !deps.FFmpegFound {
		logrus.Warn("ffmpeg not found, merging and post-processing will fail")
	}

	library, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logrus.WithField("error", err).Fatal("failed to initialize library database")
	}
	defer library.Close()

	registry := procreg.New()

	executor, err := ytdlp.NewExecutor(cfg.YTDLPPath, registry)
	if err != nil {
		logrus.WithField("error", err).Fatal("failed to initialize executor")
	}

	hub := httpAdapter.NewHub()

	q := queue.New(executor, registry, hub, library, cfg.MaxConcurrent)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := httpAdapter.NewServer(q, executor, library, hub, cfg.Defaults, cfg.DownloadDir, addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logrus.WithField("addr", addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("error", err).Error("HTTP server error")
		}
	}()

	sig := <-sigCh
	logrus.WithField("signal", sig.String()).Info("shutting down")

	// Stop accepting requests first, then stop running downloads.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithField("error", err).Error("HTTP server shutdown error")
	}

	q.Shutdown()

	logrus.Info("shutdown complete")
}
