package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("STORE_BACKEND")
	os.Unsetenv("PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.StoreBackend != BackendMemory {
		t.Errorf("expected default backend %q, got %s", BackendMemory, cfg.StoreBackend)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("expected default session TTL 12h, got %s", cfg.SessionTTL)
	}
	if cfg.AITimeout != 30*time.Second {
		t.Errorf("expected default AI timeout 30s, got %s", cfg.AITimeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("STORE_BACKEND", "redis")
	os.Setenv("REDIS_URL", "redis://localhost:6379/0")
	defer os.Unsetenv("STORE_BACKEND")
	defer os.Unsetenv("REDIS_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.StoreBackend != BackendRedis {
		t.Errorf("expected backend redis, got %s", cfg.StoreBackend)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("expected REDIS_URL to be set, got %s", cfg.RedisURL)
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}

func baseConfig() *Config {
	return &Config{
		Env:          "development",
		StoreBackend: BackendMemory,
		AITimeout:    30 * time.Second,
		SessionTTL:   12 * time.Hour,
	}
}

func TestValidate_BackendRequirements(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"memory ok", func(c *Config) {}, false},
		{"unknown backend", func(c *Config) { c.StoreBackend = "etcd" }, true},
		{"file without data dir", func(c *Config) { c.StoreBackend = BackendFile }, true},
		{"file with data dir", func(c *Config) { c.StoreBackend = BackendFile; c.DataDir = "/tmp/d" }, false},
		{"redis without url", func(c *Config) { c.StoreBackend = BackendRedis }, true},
		{"redis with url", func(c *Config) { c.StoreBackend = BackendRedis; c.RedisURL = "redis://h:6379" }, false},
		{"postgres without url", func(c *Config) { c.StoreBackend = BackendPostgres }, true},
		{"postgres with url", func(c *Config) { c.StoreBackend = BackendPostgres; c.DatabaseURL = "postgres://h/db" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ProductionRequirements(t *testing.T) {
	cfg := baseConfig()
	cfg.Env = "production"
	cfg.StoreBackend = BackendPostgres
	cfg.DatabaseURL = "postgres://h/db"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error without signing key in production")
	}

	cfg.SessionSigningKey = "secret"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error without model API key in production")
	}

	cfg.GeminiAPIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.StoreBackend = BackendMemory
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for memory backend in production")
	}
}
