package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// App: настройки процесса, кроме БД.
type App struct {
	Env      string `envconfig:"APP_ENV" default:"dev"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	GRPCAddr string `envconfig:"GRPC_ADDR" default:":50051"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	SlotGranularity time.Duration `envconfig:"SLOT_GRANULARITY" default:"30m"`

	// Пустой адрес выключает кэш занятых слотов.
	RedisAddr          string        `envconfig:"REDIS_ADDR"`
	RedisDB            int           `envconfig:"REDIS_DB" default:"0"`
	SlotCacheTTL       time.Duration `envconfig:"SLOT_CACHE_TTL" default:"1m"`
	HealthPollInterval time.Duration `envconfig:"HEALTH_POLL_INTERVAL" default:"10s"`

	// Пустой список брокеров выключает ретрансляцию событий в Kafka.
	KafkaBrokers       []string      `envconfig:"KAFKA_BROKERS"`
	KafkaTopic         string        `envconfig:"KAFKA_TOPIC" default:"temple.bookings.v1"`
	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"1s"`
	OutboxBatch        int           `envconfig:"OUTBOX_BATCH" default:"100"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

// LoadEnvFile подхватывает .env, если он есть; отсутствие файла не ошибка.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

func Load() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load app config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}
	if cfg.SlotGranularity <= 0 {
		return nil, fmt.Errorf("invalid SLOT_GRANULARITY: %s", cfg.SlotGranularity)
	}
	if cfg.OutboxBatch <= 0 {
		cfg.OutboxBatch = 100
	}
	return &cfg, nil
}
