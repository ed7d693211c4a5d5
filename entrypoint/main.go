package main

import (
	"emfdscore.com/emfd/logger"
	"os"
)

func main() {
	logger.SetupLogging()
	if err := rootCmd().Execute(); err != nil {
		emfdLogger := logger.NewLogger("Main")
		emfdLogger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
