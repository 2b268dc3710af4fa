package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/0suu/SwitchBotController/internal/infrastructure/config"
	"github.com/0suu/SwitchBotController/internal/infrastructure/logging"
)

func testLogger() *logging.Logger {
	return logging.NewWithWriter(config.LoggingConfig{Level: "error"}, "test", io.Discard)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestRun_InvalidConfig verifies run fails with an explicit missing config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("SWITCHBOT_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_InvalidStoreBackend verifies validation errors abort startup.
func TestRun_InvalidStoreBackend(t *testing.T) {
	t.Setenv("SWITCHBOT_CONFIG", writeConfig(t, `
store:
  backend: etcd
`))

	if err := run(context.Background()); err == nil {
		t.Fatal("run() should fail with an unknown store backend")
	}
}

func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("SWITCHBOT_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("SWITCHBOT_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestLoadConfig_DefaultsWhenMissing verifies a missing default file is
// not an error.
func TestLoadConfig_DefaultsWhenMissing(t *testing.T) {
	cfg, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Store.Backend != config.StoreBackendSQLite {
		t.Errorf("store backend = %q, want sqlite", cfg.Store.Backend)
	}
}

// ─── Store backends ─────────────────────────────────────────────────

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"memory", config.Config{Store: config.StoreConfig{Backend: config.StoreBackendMemory}}},
		{"sqlite", config.Config{
			Store:    config.StoreConfig{Backend: config.StoreBackendSQLite},
			Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "data", "switchbot.db"), WALMode: true, BusyTimeout: 5},
		}},
		{"redis", config.Config{Store: config.StoreConfig{
			Backend: config.StoreBackendRedis,
			Redis:   config.RedisConfig{Address: mr.Addr(), KeyPrefix: "test:"},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, closeStore, err := openStore(ctx, &tt.cfg, testLogger())
			if err != nil {
				t.Fatalf("openStore() error: %v", err)
			}
			defer closeStore()

			if err := st.Set(ctx, "theme", []byte(`"dark"`)); err != nil {
				t.Fatalf("Set() error: %v", err)
			}
			got, ok, err := st.Get(ctx, "theme")
			if err != nil || !ok || string(got) != `"dark"` {
				t.Errorf("Get() = %q, %v, %v", got, ok, err)
			}
		})
	}
}

func TestOpenStore_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Config{Store: config.StoreConfig{
		Backend: config.StoreBackendRedis,
		Redis:   config.RedisConfig{Address: addr},
	}}
	if _, _, err := openStore(context.Background(), &cfg, testLogger()); err == nil {
		t.Fatal("openStore() should fail when redis is unreachable")
	}
}

// ─── Startup ────────────────────────────────────────────────────────

// TestRun_MockStartupAndShutdown starts the daemon against the demo bridge
// and stops it by cancelling the context.
func TestRun_MockStartupAndShutdown(t *testing.T) {
	t.Setenv("SWITCHBOT_CONFIG", writeConfig(t, `
site:
  id: test-site
switchbot:
  mock: true
  token: demo-token
  secret: demo-secret
store:
  backend: memory
api:
  host: "127.0.0.1"
  port: 19090
polling:
  default_interval_seconds: 0
logging:
  level: error
  format: text
`))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	time.Sleep(300 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not return after cancellation")
	}
}
