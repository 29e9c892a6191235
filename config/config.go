package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"

	"github.com/njangir/acing-interview/logger"
)

var loadOnce sync.Once

// LoadEnv loads the .env file once. A missing file is fine in
// production where everything comes from real environment variables.
func LoadEnv() {
	loadOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			if _, statErr := os.Stat(".env"); statErr == nil {
				logger.WarnLogger.Warnf("Failed to load .env file: %v", err)
			}
		}
	})
}
