package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h token ttl, got %v", cfg.TokenTTL)
	}
	if cfg.Scheduler.DeadlineSpec != "0 8-18 * * *" {
		t.Errorf("unexpected deadline spec %q", cfg.Scheduler.DeadlineSpec)
	}
	if cfg.Scheduler.OverdueSpec != "0 */6 * * *" {
		t.Errorf("unexpected overdue spec %q", cfg.Scheduler.OverdueSpec)
	}
	if cfg.SMTP.Timeout != 10*time.Second {
		t.Errorf("expected 10s mail timeout, got %v", cfg.SMTP.Timeout)
	}
	if cfg.FrontendURL != "http://localhost:5173" {
		t.Errorf("unexpected frontend url %q", cfg.FrontendURL)
	}

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.String() != "America/New_York" {
		t.Errorf("unexpected location %q", loc)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":               "9090",
		"STORE_DRIVER":       "memory",
		"SCHEDULER_TIMEZONE": "UTC",
		"REDIS_ENABLED":      "false",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" || cfg.StoreDriver != "memory" || cfg.Redis.Enabled {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_RejectsUnknownStoreDriver(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"STORE_DRIVER": "postgres",
	}))
	if err == nil {
		t.Fatalf("expected error for unknown store driver")
	}
}

func TestSchedulerConfig_InvalidTimezone(t *testing.T) {
	_, err := SchedulerConfig{Timezone: "Mars/Olympus"}.Location()
	if err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}
