// Package config holds the runtime configuration of the chat backend.
// Values come from the environment (optionally seeded from a .env file by
// godotenv in main); timing constants for the socket layer live here as well.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// Socket
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 4096
	SendBufferSize = 256

	// Session replaced by a newer connection of the same user.
	CloseSessionReplaced = 4001

	// Auth
	JWTCookieName = "jwt"
	JWTTTL        = 15 * 24 * time.Hour
	JWTIssuer     = "chatapp-service"

	// HTTP
	ShutdownTimeout = 10 * time.Second
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Port          string
	Env           string
	StorageDriver string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JWTSecret     string
	ClientOrigin  string
}

// Load reads the configuration from environment variables, applying defaults
// for everything that is optional.
func Load() Config {
	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			redisDB = n
		}
	}

	return Config{
		Port:          getEnv("PORT", "3000"),
		Env:           getEnv("APP_ENV", "development"),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StoragePostgres)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		JWTSecret:     os.Getenv("JWT_SECRET"),
		ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
	}
}

// IsProduction reports whether cookies should be marked secure.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
