package config

import (
	"testing"

	"github.com/slotter-org/batai-backend/internal/logger"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("GEMINI_API_KEY", "key")
	cfg, err := Load(logger.Nop())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" || cfg.StoreDriver != StorePostgres || cfg.LLMDriver != LLMGemini {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Gemini.Model != "gemini-1.5-flash" {
		t.Fatalf("unexpected model %q", cfg.Gemini.Model)
	}
	if cfg.MaxCompletionBodyBytes != DefaultMaxCompletionBodyBytes || cfg.Redis.DB != 0 || cfg.Redis.Required {
		t.Fatalf("unexpected limits/redis defaults: %+v", cfg)
	}
}

func TestLoadNumericAndBoolKeys(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("LLM_DRIVER", "echo")
	t.Setenv("COMPLETION_MAX_BODY_BYTES", "4096")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_REQUIRED", "true")
	cfg, err := Load(logger.Nop())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxCompletionBodyBytes != 4096 || cfg.Redis.DB != 3 || !cfg.Redis.Required {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		StoreDriver:            StoreMemory,
		LLMDriver:              LLMEcho,
		Auth:                   Auth{JWTSecret: "x"},
		MaxCompletionBodyBytes: DefaultMaxCompletionBodyBytes,
	}
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"memory echo ok", func(c *Config) {}, false},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, true},
		{"unknown store", func(c *Config) { c.StoreDriver = "sqlite" }, true},
		{"mongo without uri", func(c *Config) { c.StoreDriver = StoreMongo }, true},
		{"firestore without project", func(c *Config) { c.StoreDriver = StoreFirestore }, true},
		{"gemini without key", func(c *Config) { c.LLMDriver = LLMGemini; c.Gemini.Backend = GeminiBackendAPI }, true},
		{"zero body limit", func(c *Config) { c.MaxCompletionBodyBytes = 0 }, true},
		{"redis required without address", func(c *Config) { c.Redis.Required = true }, true},
		{"redis required with address", func(c *Config) {
			c.Redis.Required = true
			c.Redis.Address = "localhost:6379"
		}, false},
		{"vertex with project", func(c *Config) {
			c.LLMDriver = LLMGemini
			c.Gemini.Backend = GeminiBackendVertex
			c.Gemini.Project = "p"
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mutate(&c)
			err := c.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("wantErr=%v, got %v", tc.wantErr, err)
			}
		})
	}
}
