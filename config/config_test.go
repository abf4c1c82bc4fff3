package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// newTestConfig creates a valid config for tests.
func newTestConfig() *Config {
	cfg := NewDefaultConfig()
	// Override secrets for deterministic tests
	cfg.Jwt.AuthSecret = "test_secret_32_bytes_long_xxxxxx"
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidateServerAddr(t *testing.T) {
	testCases := []struct {
		name     string
		addr     string
		wantAddr string
		wantErr  bool
	}{
		{"host and port", "example.com:8080", "example.com:8080", false},
		{"port only defaults host", ":8080", "localhost:8080", false},
		{"ipv6 host", "[::1]:8080", "[::1]:8080", false},
		{"empty addr", "", "", true},
		{"missing port", "example.com", "", true},
		{"non numeric port", ":http2x", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newTestConfig()
			cfg.Server.Addr = tc.addr

			err := Validate(cfg)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Server.Addr != tc.wantAddr {
				t.Errorf("addr = %q, want %q", cfg.Server.Addr, tc.wantAddr)
			}
		})
	}
}

func TestValidateJwt(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(cfg *Config) {}, false},
		{"short secret", func(cfg *Config) { cfg.Jwt.AuthSecret = "short" }, true},
		{"zero token duration", func(cfg *Config) { cfg.Jwt.AuthTokenDuration = Duration{} }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newTestConfig()
			tc.mutate(cfg)

			err := Validate(cfg)
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateScheduler(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(cfg *Config) {}, false},
		{"zero interval", func(cfg *Config) { cfg.Scheduler.Interval = Duration{} }, true},
		{"zero jobs per tick", func(cfg *Config) { cfg.Scheduler.MaxJobsPerTick = 0 }, true},
		{"zero concurrency", func(cfg *Config) { cfg.Scheduler.ConcurrencyMultiplier = 0 }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newTestConfig()
			tc.mutate(cfg)

			err := Validate(cfg)
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	testCases := []struct {
		name    string
		text    string
		want    time.Duration
		wantErr bool
	}{
		{"minutes", "45m", 45 * time.Minute, false},
		{"hours", "24h", 24 * time.Hour, false},
		{"composite", "1h30m", 90 * time.Minute, false},
		{"garbage", "soon", 0, true},
		{"empty", "", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tc.text))
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Duration != tc.want {
				t.Errorf("duration = %v, want %v", d.Duration, tc.want)
			}
		})
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	content := `
db_file = "custom.db"

[server]
addr = ":9090"

[jwt]
auth_secret = "test_secret_32_bytes_long_xxxxxx"
auth_token_duration = "30m"

[rate_limits]
email_verification_cooldown = "15m"
`
	path := filepath.Join(t.TempDir(), "quill.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path, discardLogger())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DBFile != "custom.db" {
		t.Errorf("DBFile = %q, want %q", cfg.DBFile, "custom.db")
	}
	if cfg.Server.Addr != "localhost:9090" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "localhost:9090")
	}
	if cfg.Jwt.AuthTokenDuration.Duration != 30*time.Minute {
		t.Errorf("AuthTokenDuration = %v, want 30m", cfg.Jwt.AuthTokenDuration.Duration)
	}
	if cfg.RateLimits.EmailVerificationCooldown.Duration != 15*time.Minute {
		t.Errorf("EmailVerificationCooldown = %v, want 15m", cfg.RateLimits.EmailVerificationCooldown.Duration)
	}
	// Untouched sections keep defaults
	if cfg.Scheduler.MaxJobsPerTick != 10 {
		t.Errorf("Scheduler.MaxJobsPerTick = %d, want default 10", cfg.Scheduler.MaxJobsPerTick)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("this is = not [valid toml"), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := Load(path, discardLogger())
	if err == nil {
		t.Fatal("expected error for malformed TOML, got nil")
	}
	if !strings.Contains(err.Error(), "unmarshal") {
		t.Errorf("error = %v, want unmarshal failure", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"), discardLogger())
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestProviderSwap(t *testing.T) {
	first := newTestConfig()
	provider := NewProvider(first)

	if got := provider.Get(); got != first {
		t.Fatal("Get returned a different config than stored")
	}

	second := newTestConfig()
	second.Server.Addr = "localhost:9999"
	provider.Update(second)

	if got := provider.Get(); got != second {
		t.Fatal("Get did not return the updated config")
	}
}
