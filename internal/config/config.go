// Package config loads the small set of environment variables the engine
// recognizes (spec.md §6), following the validate-into-struct style of
// RoseWrightdev-Video-Conferencing's internal/v1/config. Config loading
// itself is an out-of-scope collaborator per spec.md §1; this package only
// produces the struct the engine consumes.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/berrym/lair-chat/internal/logging"
)

// Config holds every environment-derived setting the engine reads.
type Config struct {
	TCPAddr        string
	RESTAddr       string
	DatabaseURL    string
	JWTSecret      string
	AdminUser      string
	AdminPass      string
	Development    bool
	RedisAddr      string // optional, backs the Redis rate-limit store when set
	MaxConnections int    // 0 means unset, per internal/metrics.Thresholds
	MaxRoomsActive int
}

const (
	defaultTCPPort  = "8080"
	defaultRESTPort = "8082"
	defaultBindHost = "127.0.0.1"
)

// Load reads configuration from a .env file (if present) and the process
// environment, applying the defaults named in spec.md §6.
func Load() (*Config, error) {
	_ = godotenv.Load() // optional; absence is not an error

	cfg := &Config{
		TCPAddr:     defaultBindHost + ":" + getenv("TCP_PORT", defaultTCPPort),
		RESTAddr:    defaultBindHost + ":" + getenv("REST_PORT", defaultRESTPort),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminUser:   getenv("ADMIN_USERNAME", "admin"),
		AdminPass:   os.Getenv("ADMIN_PASSWORD"),
		Development: os.Getenv("LAIR_ENV") == "development",
		RedisAddr:   os.Getenv("REDIS_ADDR"),

		MaxConnections: getenvInt("MAX_CONNECTIONS", 0),
		MaxRoomsActive: getenvInt("MAX_ROOMS_ACTIVE", 0),
	}

	if cfg.JWTSecret == "" {
		secret, err := generateSecret(32)
		if err != nil {
			return nil, err
		}
		cfg.JWTSecret = secret
		logging.L().Warn("JWT_SECRET not set; generated an ephemeral secret for this process")
	}

	if cfg.AdminPass == "" {
		pass, err := generateSecret(16)
		if err != nil {
			return nil, err
		}
		cfg.AdminPass = pass
		logging.L().Warn("ADMIN_PASSWORD not set; generated an ephemeral password for this process")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func generateSecret(nBytes int) (string, error) {
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
