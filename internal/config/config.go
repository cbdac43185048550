package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	FeedPostgres = "postgres"
	FeedRedis    = "redis"
	FeedMemory   = "memory"
)

var ErrMissingSecret = errors.New("JWT_SECRET is required")

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type RefreshConfig struct {
	Debounce   time.Duration
	RetryDelay time.Duration
	Workers    int
	QueueSize  int
}

type Config struct {
	Port          string
	StorageDriver string
	FeedDriver    string

	Database DatabaseConfig
	Redis    RedisConfig
	Refresh  RefreshConfig

	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration

	SnapshotTTL     time.Duration
	HabitCacheTTL   time.Duration
	StreamKeepAlive time.Duration

	RateLimit  int
	RateWindow time.Duration

	LogLevel   string
	LogFormat  string
	EnableDocs bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("FEED_DRIVER", FeedPostgres)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "kanso_db")

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "kanso-progress-engine")
	v.SetDefault("TOKEN_TTL", "24h")

	v.SetDefault("REFRESH_DEBOUNCE", "500ms")
	v.SetDefault("REFRESH_RETRY_DELAY", "2s")
	v.SetDefault("REFRESH_WORKERS", 2)
	v.SetDefault("REFRESH_QUEUE_SIZE", 256)

	v.SetDefault("SNAPSHOT_TTL", "24h")
	v.SetDefault("HABIT_CACHE_TTL", "10m")
	v.SetDefault("STREAM_KEEPALIVE", "25s")

	v.SetDefault("RATE_LIMIT", 100)
	v.SetDefault("RATE_WINDOW", "1m")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("ENABLE_DOCS", true)
}

// Load reads the configuration and validates it.
func Load(configFile string) (*Config, error) {
	cfg, err := Read(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read resolves the configuration from, in increasing priority: defaults,
// the optional config file, a .env file in the working directory and the
// environment. It does not validate.
func Read(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("[CONFIG] no .env file, using environment only")
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	v.AutomaticEnv()

	cfg := &Config{
		Port:          v.GetString("PORT"),
		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		FeedDriver:    strings.ToLower(v.GetString("FEED_DRIVER")),
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Refresh: RefreshConfig{
			Debounce:   v.GetDuration("REFRESH_DEBOUNCE"),
			RetryDelay: v.GetDuration("REFRESH_RETRY_DELAY"),
			Workers:    v.GetInt("REFRESH_WORKERS"),
			QueueSize:  v.GetInt("REFRESH_QUEUE_SIZE"),
		},
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTIssuer:       v.GetString("JWT_ISSUER"),
		TokenTTL:        v.GetDuration("TOKEN_TTL"),
		SnapshotTTL:     v.GetDuration("SNAPSHOT_TTL"),
		HabitCacheTTL:   v.GetDuration("HABIT_CACHE_TTL"),
		StreamKeepAlive: v.GetDuration("STREAM_KEEPALIVE"),
		RateLimit:       v.GetInt("RATE_LIMIT"),
		RateWindow:      v.GetDuration("RATE_WINDOW"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		EnableDocs:      v.GetBool("ENABLE_DOCS"),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}

	switch c.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (use postgres or memory)", c.StorageDriver)
	}

	switch c.FeedDriver {
	case FeedMemory:
	case FeedPostgres:
		if c.StorageDriver != StoragePostgres {
			return fmt.Errorf("FEED_DRIVER=postgres needs STORAGE_DRIVER=postgres")
		}
	case FeedRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("FEED_DRIVER=redis needs REDIS_ENABLED=true")
		}
	default:
		return fmt.Errorf("unknown FEED_DRIVER %q (use postgres, redis or memory)", c.FeedDriver)
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}
