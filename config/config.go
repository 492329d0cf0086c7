package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/btnpop/btnpop-api/utils"
)

// Config carries everything handlers need: env-derived settings, the
// Mongo client and the logger. Built once in main and injected, never
// read from globals.
type Config struct {
	MongoClient *mongo.Client
	DBName      string

	JWTSecret   string
	JWTExpiry   time.Duration
	FrontendURL string
	Port        string

	UploadDir string
	Store     utils.ImageStore
	Mailer    *utils.Mailer

	Logger zerolog.Logger
}

func Load() (*Config, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		DBName:      getEnv("DB_NAME", "btnpop"),
		JWTSecret:   secret,
		JWTExpiry:   parseExpiry(os.Getenv("JWT_EXPIRY")),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		Port:        getEnv("PORT", "5000"),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		Logger:      zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	cfg.MongoClient = client

	// Cloudinary when credentials are present, local disk otherwise.
	if cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME"); cloudName != "" {
		store, err := utils.NewCloudinaryStore(
			cloudName,
			os.Getenv("CLOUDINARY_API_KEY"),
			os.Getenv("CLOUDINARY_API_SECRET"),
			getEnv("CLOUDINARY_FOLDER", "btnpop"),
		)
		if err != nil {
			return nil, err
		}
		cfg.Store = store
	} else {
		store, err := utils.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		cfg.Store = store
	}

	cfg.Mailer = &utils.Mailer{
		APIURL: os.Getenv("ZEPTO_API_URL"),
		APIKey: os.Getenv("ZEPTO_API_KEY"),
		From:   os.Getenv("EMAIL_FROM"),
		Logger: cfg.Logger,
	}

	return cfg, nil
}

// Collection is a shorthand for the configured database's collections.
func (c *Config) Collection(name string) *mongo.Collection {
	return c.MongoClient.Database(c.DBName).Collection(name)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseExpiry accepts Go durations ("168h") or a plain day count ("7").
// Defaults to 7 days.
func parseExpiry(raw string) time.Duration {
	if raw == "" {
		return 7 * 24 * time.Hour
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if days, err := strconv.Atoi(raw); err == nil && days > 0 {
		return time.Duration(days) * 24 * time.Hour
	}
	return 7 * 24 * time.Hour
}
