package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI    string
	ListenAddr     string
	ImportAPIKey   string
	SheetID        string
	TelegramToken  string
	TelegramChatID string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	return &Config{
		DatabaseURI:    os.Getenv("DATABASE_URI"),
		ListenAddr:     getEnvOrDefault("LISTEN_ADDR", ":8080"),
		ImportAPIKey:   os.Getenv("IMPORT_API_KEY"),
		SheetID:        os.Getenv("SHEET_ID"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
