package config

import (
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`
http:
  port: 8080
queue:
  addrs: ["localhost:6379"]
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Queue.Name != "index" || cfg.Queue.KeyPrefix != "hotqueue:" {
		t.Errorf("unexpected queue defaults: %+v", cfg.Queue)
	}
	if cfg.Queue.PollTimeout() != time.Second {
		t.Errorf("expected 1s poll timeout, got %v", cfg.Queue.PollTimeout())
	}
	if cfg.Index.BufferLimit != 10 || cfg.Index.FlushPeriod() != 60*time.Second {
		t.Errorf("unexpected index defaults: %+v", cfg.Index)
	}
	if cfg.Index.DefaultPageSize != 25 || cfg.Index.MaxPageSize != 100 {
		t.Errorf("unexpected page defaults: %+v", cfg.Index)
	}
	if !cfg.Daemon.IsEmbedded() {
		t.Error("daemon should be embedded by default")
	}
}

func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("SEARCHR_TEST_REDIS", "redis.internal:6380")
	t.Setenv("SEARCHR_TEST_EMBEDDED", "")

	cfg, err := Parse([]byte(`
http:
  port: ${SEARCHR_TEST_PORT:-9000}
queue:
  addrs: ["${SEARCHR_TEST_REDIS}"]
daemon:
  embedded: ${SEARCHR_TEST_EMBEDDED:-false}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9000 {
		t.Errorf("expected default port 9000, got %d", cfg.HTTP.Port)
	}
	if cfg.Queue.Addrs[0] != "redis.internal:6380" {
		t.Errorf("expected expanded addr, got %q", cfg.Queue.Addrs[0])
	}
	if cfg.Daemon.IsEmbedded() {
		t.Error("expected embedded daemon disabled")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		c := Config{HTTP: HTTPConfig{Port: 8080}, Queue: QueueConfig{Addrs: []string{"localhost:6379"}}}
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"no broker", func(c *Config) { c.Queue.Addrs = nil }, "queue.addrs is required"},
		{"negative db", func(c *Config) { c.Queue.DB = -1 }, "queue.db"},
		{"page sizes", func(c *Config) { c.Index.DefaultPageSize = 500 }, "exceeds index.max_page_size"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoad_ShippedConfigs(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DATABASE_PATH", "/tmp/searchr.db")
	t.Setenv("INDEX_DIR", "/tmp/index")
	t.Setenv("API_KEY", "k")

	for _, env := range []string{"local", "docker", "prod"} {
		t.Run(env, func(t *testing.T) {
			if _, err := Load(env); err != nil {
				t.Fatalf("load %s: %v", env, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("does-not-exist"); err == nil {
		t.Fatal("expected error for missing config")
	}
}
