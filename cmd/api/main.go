package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/koweyli/vantage-console/internal/api/routes"
	"github.com/koweyli/vantage-console/internal/config"
	"github.com/koweyli/vantage-console/internal/logger"
	"github.com/koweyli/vantage-console/internal/server"
	"github.com/koweyli/vantage-console/internal/store"
	"github.com/koweyli/vantage-console/internal/version"
)

func main() {
	// Optional .env for local development, real deployments set env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Init(false, os.Stdout)
		logger.WithError(err).Fatal("load config")
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "console.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))

	logger.WithFields(logrus.Fields{
		"version": version.Full(),
		"port":    cfg.HTTPPort,
	}).Infof("starting %s", version.Name)

	snap, err := store.NewFileSnapshotter(cfg.DataDir)
	if err != nil {
		logger.WithError(err).Fatal("init snapshot directory")
	}
	users, err := store.NewUserStore(snap)
	if err != nil {
		logger.WithError(err).Fatal("load user store")
	}
	perms, err := store.NewPermissionStore(snap)
	if err != nil {
		logger.WithError(err).Fatal("load permission store")
	}
	audit, err := store.NewAuditStore(snap)
	if err != nil {
		logger.WithError(err).Fatal("load audit store")
	}

	srv := server.New(routes.Deps{Users: users, Perms: perms, Audit: audit, Cfg: cfg})

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SnapshotSpec, func() {
		flushAll(users, perms, audit)
	}); err != nil {
		logger.WithError(err).Fatal("schedule snapshot job")
	}
	if _, err := scheduler.AddFunc("@every 1m", srv.DataCenter.RefreshDevices); err != nil {
		logger.WithError(err).Fatal("schedule telemetry refresh")
	}
	scheduler.Start()
	defer scheduler.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.WithError(err).Fatal("server error")
	}

	flushAll(users, perms, audit)
	logger.Log().Info("shutdown complete")
}

func flushAll(users *store.UserStore, perms *store.PermissionStore, audit *store.AuditStore) {
	if err := users.Flush(); err != nil {
		logger.WithError(err).Error("flush user store")
	}
	if err := perms.Flush(); err != nil {
		logger.WithError(err).Error("flush permission store")
	}
	if err := audit.Flush(); err != nil {
		logger.WithError(err).Error("flush audit store")
	}
}
