package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SETTLEMENT_OWNER", "0x1111111111111111111111111111111111111111")
	t.Setenv("HTTP_PORT", "18080")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ServiceID != "settlement-engine" {
		t.Fatalf("service id %q", cfg.ServiceID)
	}
	if cfg.HTTPPort != 18080 {
		t.Fatalf("http port %d, env override lost", cfg.HTTPPort)
	}
	if cfg.ObolBps != 100 || cfg.ProtectBps != 50 {
		t.Fatalf("default fees %d/%d", cfg.ObolBps, cfg.ProtectBps)
	}
}

func TestLoadConfigFileValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SETTLEMENT_OWNER", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
service:
  id: settlement-engine-staging
  http_port: 9999
dependencies:
  postgres_url: postgres://localhost/settlement
settlement:
  owner: "0x2222222222222222222222222222222222222222"
  obol_bps: 250
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ServiceID != "settlement-engine-staging" || cfg.HTTPPort != 9999 {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.DatabaseURL != "postgres://localhost/settlement" {
		t.Fatalf("database url %q", cfg.DatabaseURL)
	}
	if cfg.ObolBps != 250 {
		t.Fatalf("obol bps %d", cfg.ObolBps)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	t.Setenv("JWT_SECRET", "")
	t.Setenv("SETTLEMENT_OWNER", "0x1111111111111111111111111111111111111111")
	if _, err := LoadConfig(missing); err == nil {
		t.Fatal("missing JWT secret must fail")
	}

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SETTLEMENT_OWNER", "not-an-address")
	if _, err := LoadConfig(missing); err == nil {
		t.Fatal("invalid owner must fail")
	}

	t.Setenv("SETTLEMENT_OWNER", "0x1111111111111111111111111111111111111111")
	t.Setenv("OBOL_BPS", "9000")
	t.Setenv("PROTECT_BPS", "2000")
	if _, err := LoadConfig(missing); err == nil {
		t.Fatal("fee shares above the denominator must fail")
	}
}
