package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver          string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	RedisHost         string
	RedisPort         string
	SessionSecret     string
	JWTSecret         string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	GinMode           string
	BootstrapUsername string
	BootstrapPassword string
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	return &Config{
		DBDriver:          getEnv("DB_DRIVER", "mysql"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBUser:            getEnv("DB_USER", "taskuser"),
		DBPassword:        getEnv("DB_PASSWORD", "taskpassword"),
		DBName:            getEnv("DB_NAME", "task_assignment"),
		RedisHost:         getEnv("REDIS_HOST", "localhost"),
		RedisPort:         getEnv("REDIS_PORT", "6379"),
		SessionSecret:     getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		JWTSecret:         getEnv("JWT_SECRET", "default-jwt-secret-change-me"),
		AccessTokenTTL:    getDurationEnv("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:   getDurationEnv("REFRESH_TOKEN_TTL", 24*time.Hour*7),
		GinMode:           getEnv("GIN_MODE", "debug"),
		BootstrapUsername: getEnv("BOOTSTRAP_ADMIN_USERNAME", "superadmin"),
		BootstrapPassword: getEnv("BOOTSTRAP_ADMIN_PASSWORD", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
