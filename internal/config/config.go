package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/avagyan/atelier_orders/internal/models"
)

type Config struct {
	PORT               string
	DB_HOST            string
	DB_PORT            string
	DB_USER            string
	DB_PASSWORD        string
	DB_NAME            string
	JWT_SECRET         string
	TELEGRAM_BOT_TOKEN string
	ADMIN_CHAT_ID      int64
	KAFKA_ADDRESS      string
	UPLOAD_DIR         string
	LOG_LEVEL          string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		PORT:               os.Getenv("PORT"),
		DB_HOST:            os.Getenv("DB_HOST"),
		DB_PORT:            os.Getenv("DB_PORT"),
		DB_USER:            os.Getenv("DB_USER"),
		DB_PASSWORD:        os.Getenv("DB_PASSWORD"),
		DB_NAME:            os.Getenv("DB_NAME"),
		JWT_SECRET:         os.Getenv("JWT_SECRET"),
		TELEGRAM_BOT_TOKEN: os.Getenv("TELEGRAM_BOT_TOKEN"),
		KAFKA_ADDRESS:      os.Getenv("KAFKA_ADDRESS"),
		UPLOAD_DIR:         os.Getenv("UPLOAD_DIR"),
		LOG_LEVEL:          os.Getenv("LOG_LEVEL"),
	}

	if config.PORT == "" {
		config.PORT = "8080"
	}
	if config.UPLOAD_DIR == "" {
		config.UPLOAD_DIR = "uploads"
	}

	if raw := os.Getenv("ADMIN_CHAT_ID"); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_CHAT_ID %q: %w", raw, err)
		}
		config.ADMIN_CHAT_ID = chatID
	}

	return config, nil
}

func InitDB() (*gorm.DB, error) {
	configuration, _ := LoadConfig()

	host := configuration.DB_HOST
	port := configuration.DB_PORT
	user := configuration.DB_USER
	password := configuration.DB_PASSWORD
	dbname := configuration.DB_NAME

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, dbname,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Order{}); err != nil {
		return nil, fmt.Errorf("не удалось выполнить миграцию: %w", err)
	}
	return db, nil
}
