package main

import (
	"fachschaft-protokolle/internal/logging"
	"go.uber.org/zap/zapcore"
	"os"
)

func main() {
	logger := logging.InitConsoleLogging(zapcore.InfoLevel)

	if err := NewRootCmd(&Dependencies{Logger: logger}).Execute(); err != nil {
		logger.LogError(nil, err)
		os.Exit(1)
	}
}
