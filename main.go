// main.go
package main

import (
	"log"
	"time"

	"surfcamp-booking/cmd"
	"surfcamp-booking/internal/data/repository"
	"surfcamp-booking/internal/wire"
	"surfcamp-booking/pkg/database"
	"surfcamp-booking/pkg/ratelimit"
	"surfcamp-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Rate limiting needs Redis; without it the service runs unlimited
	var limiter ratelimit.Limiter
	if config.Redis.URL != "" {
		redisLimiter, err := ratelimit.NewRedisLimiter(
			config.Redis.URL,
			config.Redis.RateLimit,
			time.Duration(config.Redis.RateWindowSec)*time.Second,
		)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer redisLimiter.Close()
		limiter = redisLimiter

		logger.Info("Redis rate limiter enabled",
			zap.Int("limit", config.Redis.RateLimit),
			zap.Int("window_seconds", config.Redis.RateWindowSec),
		)
	} else {
		logger.Warn("REDIS_URL not set, rate limiting disabled")
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(db, repos, limiter, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
