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

	"github.com/mvshop/multivendor-shop/internal/models"
)

// Defaults mirror the values the storefront was shipped against: the server
// answers on port 4000 and tokens are signed with "secret_ecom" unless the
// environment says otherwise.
type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret string

	PublicURL string
	UploadDir string

	KafkaAddress string

	ESURL      string
	ESUser     string
	ESPassword string

	EnforceAuth bool

	LogLevel string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		Port: EnvDefault("PORT", "4000"),

		DBHost:     EnvDefault("DB_HOST", "127.0.0.1"),
		DBPort:     EnvDefault("DB_PORT", "5432"),
		DBUser:     EnvDefault("DB_USER", "postgres"),
		DBPassword: EnvDefault("DB_PASSWORD", "postgres"),
		DBName:     EnvDefault("DB_NAME", "e-commerce"),

		JWTSecret: EnvDefault("JWT_SECRET", "secret_ecom"),

		PublicURL: EnvDefault("PUBLIC_URL", "http://localhost:4000"),
		UploadDir: EnvDefault("UPLOAD_DIR", "upload/images"),

		KafkaAddress: os.Getenv("KAFKA_ADDRESS"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),

		EnforceAuth: EnvBoolDefault("AUTH_ENFORCE", false),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),
	}

	return config, nil
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}
