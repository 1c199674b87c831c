package health

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"parley/agent/internal/config"
)

func TestCheckAllHealthyTempDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("FRAUD_DB_PATH", filepath.Join(dir, "fraud.db"))
	cfg := config.Load()

	status := CheckAll(context.Background(), cfg)
	if !status.OK {
		t.Fatalf("expected healthy status, got %s", status)
	}
	if len(status.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(status.Checks))
	}
}

func TestStringRendersFailures(t *testing.T) {
	s := HealthStatus{
		OK: false,
		Checks: []CheckResult{
			{Name: "data_dir", OK: true},
			{Name: "case_db", OK: false, Error: "disk full"},
		},
	}
	out := s.String()
	if !strings.Contains(out, "FAIL") || !strings.Contains(out, "disk full") {
		t.Fatalf("unexpected rendering: %q", out)
	}
}
