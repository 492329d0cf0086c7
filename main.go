package main

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/btnpop/btnpop-api/config"
	"github.com/btnpop/btnpop-api/routes"
	"github.com/btnpop/btnpop-api/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := cfg.Logger.Level(zerolog.InfoLevel)
	cfg.Logger = logger

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := cfg.EnsureIndexes(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("ensure indexes")
	}
	if err := cfg.EnsureAdmin(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("seed admin user")
	}
	cancel()

	go scheduler.New(cfg, time.Hour).Start(context.Background())

	r := gin.Default()
	r.Use(cors.Default())
	routes.SetupRoutes(r, cfg)

	logger.Info().Str("port", cfg.Port).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
