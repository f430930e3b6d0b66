package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.GRPCAddr != ":50051" {
		t.Fatalf("unexpected addrs: %s %s", cfg.HTTPAddr, cfg.GRPCAddr)
	}
	if cfg.SlotGranularity != 30*time.Minute {
		t.Fatalf("unexpected granularity: %s", cfg.SlotGranularity)
	}
	if cfg.KafkaTopic != "temple.bookings.v1" || len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("unexpected kafka config: %+v", cfg)
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SLOT_GRANULARITY", "15m")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SlotGranularity != 15*time.Minute {
		t.Fatalf("unexpected granularity: %s", cfg.SlotGranularity)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
}

func TestDBConfig_Validate(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "booking.db")

	cfg, err := LoadDBConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Driver != DriverSQLite || cfg.SQLitePath != "booking.db" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	cfg.Driver = "oracle"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestLoadDBConfig_IgnoresUnprefixedVars(t *testing.T) {
	t.Setenv("USER", "alice")
	t.Setenv("HOST", "laptop.local")
	t.Setenv("PORT", "8080")
	t.Setenv("NAME", "shell")
	t.Setenv("DRIVER", "sqlite")

	cfg, err := LoadDBConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.User != "temple" || cfg.Host != "postgres" || cfg.Port != 5432 || cfg.Name != "temple_booking" {
		t.Fatalf("defaults overridden by unprefixed env: %+v", cfg)
	}
	if cfg.Driver != DriverPostgres {
		t.Fatalf("unexpected driver: %s", cfg.Driver)
	}

	t.Setenv("DB_USER", "pilgrim")
	t.Setenv("DB_PORT", "6432")
	cfg, err = LoadDBConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.User != "pilgrim" || cfg.Port != 6432 {
		t.Fatalf("DB_ vars not applied: %+v", cfg)
	}
}
