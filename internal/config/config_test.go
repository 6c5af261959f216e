package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"CONSOLE_HTTP_PORT", "DATABASE_URL", "REDIS_ADDR", "KAFKA_BROKERS",
		"CONSOLE_STORE", "CONSOLE_NOTIFIER", "CONSOLE_RESUBSCRIBE_DELAY", "CONSOLE_DEMO_FALLBACK",
		"CONSOLE_HEADLESS_PERMISSION",
	} {
		unsetEnv(t, key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.HTTP.Port != defaultHTTPPort {
		t.Errorf("expected port %d, got %d", defaultHTTPPort, cfg.HTTP.Port)
	}
	if cfg.Console.Store != StoreMemory || cfg.Console.Notifier != NotifierHeadless {
		t.Errorf("unexpected backends: %+v", cfg.Console)
	}
	if cfg.Console.ResubscribeDelay != defaultResubscribeDelay {
		t.Errorf("expected delay %s, got %s", defaultResubscribeDelay, cfg.Console.ResubscribeDelay)
	}
	if cfg.Console.DemoFallback {
		t.Error("expected demo fallback off by default")
	}
	if cfg.Console.HeadlessPermission != "default" {
		t.Errorf("expected headless permission to wait for a request, got %s", cfg.Console.HeadlessPermission)
	}
	if cfg.Redis.Addr != "" || len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("expected no redis or kafka, got %+v %+v", cfg.Redis, cfg.Kafka)
	}
	if !strings.HasPrefix(cfg.Database.URL, "postgres://") {
		t.Errorf("expected built database url, got %s", cfg.Database.URL)
	}
}

func TestLoadConsole(t *testing.T) {
	t.Setenv("CONSOLE_TENANT_ID", "bistro-7")
	t.Setenv("CONSOLE_DEMO_TENANT_ID", "bistro-demo")
	t.Setenv("CONSOLE_DEMO_FALLBACK", "true")
	t.Setenv("CONSOLE_STORE", "postgres")
	t.Setenv("CONSOLE_NOTIFIER", "desktop")
	t.Setenv("CONSOLE_RESUBSCRIBE_DELAY", "750ms")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	want := ConsoleConfig{
		TenantID:           "bistro-7",
		DemoTenantID:       "bistro-demo",
		DemoFallback:       true,
		Store:              StorePostgres,
		Notifier:           NotifierDesktop,
		ResubscribeDelay:   750 * time.Millisecond,
		HeadlessPermission: defaultHeadlessPermission,
	}
	if cfg.Console != want {
		t.Errorf("expected %+v, got %+v", want, cfg.Console)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
	if cfg.Redis.DB != 2 {
		t.Errorf("expected redis db 2, got %d", cfg.Redis.DB)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port", "CONSOLE_HTTP_PORT", "eighty"},
		{"store", "CONSOLE_STORE", "sqlite"},
		{"notifier", "CONSOLE_NOTIFIER", "pager"},
		{"delay", "CONSOLE_RESUBSCRIBE_DELAY", "soon"},
		{"negative delay", "CONSOLE_RESUBSCRIBE_DELAY", "-1s"},
		{"sample rate", "OTEL_SAMPLE_RATE", "half"},
		{"redis db", "REDIS_DB", "zero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("expected error to name %s, got %v", tt.key, err)
			}
		})
	}
}
