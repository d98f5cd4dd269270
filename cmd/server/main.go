package main

import (
	"context"

	"github.com/DhawalShankar/vartalang-sub001/internal/app"
	"github.com/DhawalShankar/vartalang-sub001/internal/auth"
	"github.com/DhawalShankar/vartalang-sub001/internal/cache"
	"github.com/DhawalShankar/vartalang-sub001/internal/config"
	"github.com/DhawalShankar/vartalang-sub001/internal/db"
	"github.com/DhawalShankar/vartalang-sub001/internal/logger"
	"github.com/DhawalShankar/vartalang-sub001/internal/middleware"
	"github.com/DhawalShankar/vartalang-sub001/internal/server"
	"github.com/DhawalShankar/vartalang-sub001/internal/service/accounts"
	"github.com/DhawalShankar/vartalang-sub001/internal/service/matching"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	limiter := middleware.NewRedisLimiterStore(redisCache, cfg.RateLimit.RequestsPerMinute)

	registrars := []server.Registrar{
		accounts.NewRegistrar(appCtx, jwtManager),
		matching.NewRegistrar(appCtx, jwtManager, limiter),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
