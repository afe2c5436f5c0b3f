package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Sweep    SweepConfig
	Token    TokenConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SweepConfig controls the periodic maintenance loop (offer expiry, token purge).
type SweepConfig struct {
	Interval time.Duration
}

// TokenConfig holds default validities per token kind.
type TokenConfig struct {
	ConfirmationValidity  time.Duration
	PasswordResetValidity time.Duration
	LoginValidity         time.Duration
}

var AppConfig *Config

func LoadConfig() *Config {
	AppConfig = &Config{
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Sweep:    GetSweepConfig(),
		Token:    GetTokenConfig(),
	}
	return AppConfig
}

func LoadTestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5433", // test DB runs on 5433
			User:     "postgres",
			Password: "postgres",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     "6380", // test Redis runs on 6380
			Password: "",
			DB:       1,
		},
		Sweep: SweepConfig{Interval: time.Minute},
		Token: TokenConfig{
			ConfirmationValidity:  24 * time.Hour,
			PasswordResetValidity: time.Hour,
			LoginValidity:         15 * time.Minute,
		},
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetSweepConfig() SweepConfig {
	return SweepConfig{
		Interval: getEnvDuration("SWEEP_INTERVAL", time.Minute),
	}
}

func GetTokenConfig() TokenConfig {
	return TokenConfig{
		ConfirmationValidity:  getEnvDuration("TOKEN_CONFIRMATION_VALIDITY", 24*time.Hour),
		PasswordResetValidity: getEnvDuration("TOKEN_PASSWORD_RESET_VALIDITY", time.Hour),
		LoginValidity:         getEnvDuration("TOKEN_LOGIN_VALIDITY", 15*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			panic(err)
		}
		return d
	}
	return fallback
}
