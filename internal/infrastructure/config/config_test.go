package config_test

import (
	"testing"
	"time"

	"github.com/iho/cashledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StorageDriver != config.StorageDriverPostgres {
		t.Fatalf("expected postgres storage by default, got %s", cfg.StorageDriver)
	}

	if cfg.DatabaseIsolation != "serializable" {
		t.Fatalf("expected serializable isolation, got %s", cfg.DatabaseIsolation)
	}

	if cfg.RedisEnabled() {
		t.Fatalf("expected redis to be disabled without REDIS_URL")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.OutboxBatchSize != 100 || cfg.EventsChannel != "cashledger.events" {
		t.Fatalf("unexpected outbox defaults: %d %s", cfg.OutboxBatchSize, cfg.EventsChannel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("CURRENCY_CACHE_TTL", "1m")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StorageDriver != config.StorageDriverMemory {
		t.Fatalf("expected memory storage, got %s", cfg.StorageDriver)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if !cfg.RedisEnabled() || cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second || cfg.CurrencyCacheTTL != time.Minute {
		t.Fatalf("expected duration overrides, got %s %s", cfg.DatabaseTimeout, cfg.CurrencyCacheTTL)
	}

	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit override, got %v", cfg.RateLimitRPS)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadRejectsUnknownStorageDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for unknown storage driver")
	}
}
