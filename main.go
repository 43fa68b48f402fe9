// main.go
package main

import (
	"log"
	"time"

	"screenbook/cmd"
	"screenbook/internal/cache"
	"screenbook/internal/data/repository"
	"screenbook/internal/queue"
	"screenbook/internal/usecase"
	"screenbook/internal/wire"
	"screenbook/pkg/database"
	"screenbook/pkg/utils"

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

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)
	uow := repository.NewUnitOfWork(db, logger)

	// Stats notifier (optional, best effort)
	var notifier usecase.StatsNotifier = usecase.NopNotifier{}
	if config.Queue.Enabled {
		notifier = queue.NewPublisher(config.Queue.URL, logger)
		logger.Info("Stats queue enabled")
	}

	// Booked-seats cache (optional)
	var seatsCache usecase.BookedSeatsCache = cache.Noop{}
	if config.Cache.Enabled {
		redisClient, err := cache.InitRedis(config.Cache)
		if err != nil {
			logger.Warn("Redis unavailable, running without cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			ttl := time.Duration(config.Cache.TTLSeconds) * time.Second
			seatsCache = cache.NewBookedSeats(redisClient, ttl, logger)
			logger.Info("Booked-seats cache enabled")
		}
	}

	// Wire all dependencies
	app := wire.Wiring(repos, uow, notifier, seatsCache, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
