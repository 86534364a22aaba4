package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// RedisAddr enables the balance summary cache when set.
	RedisAddr       string
	SummaryCacheTTL time.Duration

	// TransferRetryAttempts bounds the engine's retry of version
	// conflicts per balance leg.
	TransferRetryAttempts uint64

	// RateLimit uses the limiter formatted syntax, e.g. "120-M".
	RateLimit string

	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("SUMMARY_CACHE_TTL", "30s")
	viper.SetDefault("TRANSFER_RETRY_ATTEMPTS", 5)
	viper.SetDefault("RATE_LIMIT", "120-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	if cfg.RedisAddr == "" {
		log.Println("Warning: REDIS_ADDR not set. Balance summary caching disabled.")
	}

	summaryTTLStr := viper.GetString("SUMMARY_CACHE_TTL")
	summaryTTL, err := time.ParseDuration(summaryTTLStr)
	if err != nil {
		summaryTTL = 30 * time.Second
		log.Printf("Warning: Invalid value for SUMMARY_CACHE_TTL ('%s'). Defaulting to %s.\n", summaryTTLStr, summaryTTL)
	}
	cfg.SummaryCacheTTL = summaryTTL

	cfg.TransferRetryAttempts = viper.GetUint64("TRANSFER_RETRY_ATTEMPTS")
	if cfg.TransferRetryAttempts == 0 {
		cfg.TransferRetryAttempts = 5
		log.Printf("Warning: TRANSFER_RETRY_ATTEMPTS not set. Defaulting to %d.\n", cfg.TransferRetryAttempts)
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	if cfg.RateLimit == "" {
		cfg.RateLimit = "120-M"
		log.Printf("Warning: RATE_LIMIT not set. Defaulting to %s.\n", cfg.RateLimit)
	}

	cfg.CORSAllowedOrigins = viper.GetStringSlice("CORS_ALLOWED_ORIGINS")

	return cfg, nil
}
