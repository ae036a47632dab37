package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("TICKETS_CLEAR_RESOLVED_ON_REOPEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.Port != "8080" {
		t.Errorf("App.Port = %q, want %q", cfg.App.Port, "8080")
	}
	if cfg.Tickets.ClearResolvedOnReopen {
		t.Error("ClearResolvedOnReopen should default to false")
	}
	if len(cfg.Tickets.Categories) != 5 {
		t.Errorf("len(Categories) = %d, want 5", len(cfg.Tickets.Categories))
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
app:
  port: "9090"
  timezone: UTC
redis:
  channel_prefix: helpdesk
tickets:
  clear_resolved_on_reopen: true
kafka:
  brokers: ["k1:9092"]
`
	path := filepath.Join(tmpDir, "portal.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("APP_CONFIG_FILE", path)
	t.Setenv("APP_PORT", "7070")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.Port != "7070" {
		t.Errorf("App.Port = %q, want env override %q", cfg.App.Port, "7070")
	}
	if cfg.App.Timezone != "UTC" {
		t.Errorf("App.Timezone = %q, want %q", cfg.App.Timezone, "UTC")
	}
	if cfg.Redis.ChannelPrefix != "helpdesk" {
		t.Errorf("Redis.ChannelPrefix = %q, want %q", cfg.Redis.ChannelPrefix, "helpdesk")
	}
	if !cfg.Tickets.ClearResolvedOnReopen {
		t.Error("ClearResolvedOnReopen = false, want true from file")
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "k1:9092" {
		t.Errorf("Kafka.Brokers = %v, want [k1:9092]", cfg.Kafka.Brokers)
	}
	if cfg.App.Name != "support-portal" {
		t.Errorf("App.Name = %q, want default kept", cfg.App.Name)
	}
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", "")
	t.Setenv("REDIS_DB", "zero")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want invalid REDIS_DB")
	}
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("PORTAL_TEST_LIST", " a, ,b ,c")
	got := getEnvAsList("PORTAL_TEST_LIST", nil)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("getEnvAsList = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("getEnvAsList[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAppConfig_Location(t *testing.T) {
	if loc := (AppConfig{Timezone: "UTC"}).Location(); loc.String() != "UTC" {
		t.Errorf("Location() = %s, want UTC", loc)
	}
	if loc := (AppConfig{Timezone: "Not/AZone"}).Location(); loc != nil && loc.String() == "Not/AZone" {
		t.Errorf("Location() accepted an invalid zone")
	}
}
