package shared

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override or complement config.toml.
const (
	EnvStorageDSN     = "LYRX_STORAGE_DSN"
	EnvStorageDriver  = "LYRX_STORAGE_DRIVER"
	EnvRedisPassword  = "LYRX_REDIS_PASSWORD"
	EnvTelegramToken  = "LYRX_TELEGRAM_TOKEN"
	EnvTelegramChatID = "LYRX_TELEGRAM_CHAT_ID"
)

// LoadDotEnv loads variables from the given .env files into the process environment.
//
// Missing files are ignored; variables already set are not overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv copies secrets and overrides from the environment into config.
func ApplyEnv(config *Config) {
	if v := os.Getenv(EnvStorageDriver); v != "" {
		config.Storage.Driver = v
	}
	if v := os.Getenv(EnvStorageDSN); v != "" {
		config.Storage.DSN = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		config.Storage.Password = v
	}
	if v := os.Getenv(EnvTelegramToken); v != "" {
		config.Contact.TelegramToken = v
	}
	if v := os.Getenv(EnvTelegramChatID); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Contact.TelegramChatID = id
		}
	}
}
