package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/artcopy/config"
	"github.com/cppla/artcopy/generator"
	"github.com/cppla/artcopy/routes"
	"github.com/cppla/artcopy/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := utils.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.UsesDefaultSecret() {
		log.Warn("SESSION_SECRET is not set; using the development default")
	}

	db, err := config.OpenDatabase(cfg, log)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	utils.StartEventPruner(ctx, db, cfg.EventRetention(), time.Hour, log)

	cache := utils.NewCache(utils.NewRedis(cfg.Redis, log), log)

	r, err := routes.SetupRouter(routes.Deps{
		Config:    cfg,
		DB:        db,
		Log:       log,
		Cache:     cache,
		Generator: generator.New(),
	})
	if err != nil {
		log.Fatal("setup router", zap.Error(err))
	}

	addr := ":" + cfg.App.Port
	log.Sugar().Infof("Starting server on port %s (graceful)", cfg.App.Port)
	opts := utils.ServerOptions{ShutdownTimeout: cfg.ShutdownTimeout()}
	if cfg.TLSEnabled() {
		opts.CertFile, opts.KeyFile = cfg.App.TLSCertPath, cfg.App.TLSKeyPath
	}
	if err := utils.GraceServer(addr, r, opts, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}
