package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Clear relevant envs
	os.Unsetenv("PORT")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("DATA_DIR")
	os.Unsetenv("FRAUD_DB_PATH")

	c := Load()

	if c.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", c.Server.Port)
	}
	if c.Server.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %q", c.Server.LogLevel)
	}
	if c.Data.Dir != "data" {
		t.Fatalf("expected default data dir, got %q", c.Data.Dir)
	}
	if c.Data.FraudDB != filepath.Join("data", "fraud.db") {
		t.Fatalf("expected fraud db under data dir, got %q", c.Data.FraudDB)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_DIR", "/tmp/parley")

	c := Load()

	if c.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", c.Server.Port)
	}
	if got := c.LedgerPath("orders.json"); got != filepath.Join("/tmp/parley", "orders.json") {
		t.Fatalf("unexpected ledger path %q", got)
	}
}
