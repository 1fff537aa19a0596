package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/emrgen/linkgraph/internal/link"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	defaultFields = "id=_id,source=source,target=target"
)

type Config struct {
	Driver         string
	DSN            string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	CacheTTL       time.Duration
	Compression    string
	Collection     string
	Fields         link.Fields
	GrpcPort       string
	HttpPort       string
	NatsURL        string
	NatsSubject    string
	PurgeSchedule  string
	PurgeRetention time.Duration
	LogLevel       logrus.Level
}

// LoadConfig reads the configuration from the environment. A .env file in the
// working directory is loaded first.
func LoadConfig() (*Config, error) {
	fields, err := link.ParseFields(getEnv("LINK_FIELDS", defaultFields))
	if err != nil {
		return nil, err
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	retention, err := time.ParseDuration(getEnv("PURGE_RETENTION", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PURGE_RETENTION: %w", err)
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Driver:         getEnv("DB_DRIVER", DriverSqlite),
		DSN:            getEnv("DB_DSN", ".tmp/linkgraph.db"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        redisDB,
		CacheTTL:       cacheTTL,
		Compression:    getEnv("COMPRESSION", "nop"),
		Collection:     getEnv("COLLECTION", "links"),
		Fields:         fields,
		GrpcPort:       getEnv("GRPC_PORT", "4020"),
		HttpPort:       getEnv("HTTP_PORT", "4021"),
		NatsURL:        os.Getenv("NATS_URL"),
		NatsSubject:    getEnv("NATS_SUBJECT", "links"),
		PurgeSchedule:  getEnv("PURGE_SCHEDULE", "@every 1h"),
		PurgeRetention: retention,
		LogLevel:       level,
	}

	switch cfg.Driver {
	case DriverSqlite, DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.Driver)
	}

	return cfg, nil
}

// GetDb opens the database configured by cfg.
func GetDb(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverSqlite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("driver %s has no database", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		logrus.Errorf("error opening %s database: %v", cfg.Driver, err)
		return nil, err
	}

	return db, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}

	return fallback
}
