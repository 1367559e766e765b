package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	catalogModule "kevscope/internal/catalog"
	ingestorModule "kevscope/internal/ingestor"
	riskmodelModule "kevscope/internal/riskmodel"
	routersModule "kevscope/internal/routers"
	envsModule "kevscope/pkg/envs"
	loggerModule "kevscope/pkg/logger"
	redisModule "kevscope/pkg/redis"

	"github.com/gofiber/fiber/v2"
)

func main() {
	envs := envsModule.ReadEnvs()
	logger := loggerModule.InitialLogger(envs.LOG_LEVEL)
	redisClient := redisModule.Init(envs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if ids, err := catalogModule.RefreshTop25(logger); err != nil {
		logger.Sugar().Errorf("Keeping the compiled-in Top 25 set: %v", err)
	} else {
		riskmodelModule.SetTop25(ids)
	}

	ingestor := ingestorModule.New(envs, logger, redisClient)
	if err := ingestor.Refresh(ctx); err != nil {
		logger.Sugar().Errorf("Initial feed refresh failed, serving an empty snapshot: %v", err)
	}
	go ingestor.StartPolling(ctx, refreshInterval(envs.FEED_REFRESH_MINUTES))

	app := fiber.New()
	router := routersModule.Initial(envs, logger, ingestor)

	channel := make(chan os.Signal, 1)
	signal.Notify(channel, os.Interrupt)

	go func() {
		logger.Info(fmt.Sprintf("Service is started and serving on port %s ...", envs.HTTP_PORT))
		if err := router.SetupRouters(app); err != nil {
			log.Fatalf("Failed to start the HTTP server: %v", err)
		}
	}()

	<-channel
	cancel()
	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down the HTTP server: %v", err)
	}
	logger.Info("HTTP server is stopped")
}

func refreshInterval(minutes string) time.Duration {
	parsed, err := strconv.Atoi(minutes)
	if err != nil || parsed <= 0 {
		parsed = 30
	}
	return time.Duration(parsed) * time.Minute
}
