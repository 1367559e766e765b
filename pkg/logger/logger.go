package logger

import (
	"log"

	"go.uber.org/zap"
)

func InitialLogger(level string) *zap.Logger {
	var logger *zap.Logger
	var err error

	switch level {
	case "Production":
		logger, err = zap.NewProduction()
	default:
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize the logger: %v", err)
	}

	return logger
}
