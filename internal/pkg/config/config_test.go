package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.StorageDriver != DriverMemory || cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Admin.Email != "admin@sistema.com" || cfg.Admin.Password != "admin" {
		t.Fatalf("unexpected admin defaults: %+v", cfg.Admin)
	}
	if cfg.Auth.RPS != 5 || cfg.Auth.Burst != 10 {
		t.Fatalf("unexpected rate defaults: %+v", cfg.Auth)
	}
	if cfg.AMQP.URL != "" {
		t.Fatal("publishing must be off by default")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"STORAGE_DRIVER": "postgres",
		"TOKEN_TTL":      "2h",
		"EVENT_WORKERS":  "0",
		"ADMIN_EMAIL":    "boss@salon.test",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StorageDriver != DriverPostgres || cfg.TokenTTL != 2*time.Hour || cfg.EventWorkers != 0 || cfg.Admin.Email != "boss@salon.test" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadWith_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":    {"STORAGE_DRIVER": "sqlite"},
		"unknown dedup":     {"DEDUP_DRIVER": "mongo"},
		"production secret": {"ENV": "production"},
		"negative workers":  {"EVENT_WORKERS": "-1"},
		"non positive ttl":  {"TOKEN_TTL": "0s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadWith(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
