package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"parley/agent/internal/casedb"
	"parley/agent/internal/config"
)

type CheckResult struct {
	Name    string        `json:"name"`
	OK      bool          `json:"ok"`
	Latency time.Duration `json:"latency_ms"`
	Error   string        `json:"error,omitempty"`
}

type HealthStatus struct {
	OK        bool          `json:"ok"`
	Checks    []CheckResult `json:"checks"`
	CheckedAt time.Time     `json:"checked_at"`
}

func (h HealthStatus) String() string {
	status := "OK"
	if !h.OK {
		status = "FAIL"
	}
	s := fmt.Sprintf("Health: %s\n", status)
	for _, c := range h.Checks {
		mark := "✓"
		if !c.OK {
			mark = "✗"
		}
		s += fmt.Sprintf("  %s %s (%dms)", mark, c.Name, c.Latency.Milliseconds())
		if c.Error != "" {
			s += fmt.Sprintf(" - %s", c.Error)
		}
		s += "\n"
	}
	return s
}

// CheckAll runs all health checks and returns combined status
func CheckAll(ctx context.Context, cfg config.Config) HealthStatus {
	checks := []CheckResult{
		checkDataDir(cfg),
		checkCaseDB(cfg),
	}

	allOK := true
	for _, c := range checks {
		if !c.OK {
			allOK = false
		}
	}

	return HealthStatus{
		OK:        allOK,
		Checks:    checks,
		CheckedAt: time.Now().UTC(),
	}
}

// checkDataDir verifies the ledger directory exists (or can be created) and
// is writable, since every ledger append rewrites a file there.
func checkDataDir(cfg config.Config) CheckResult {
	start := time.Now()
	result := CheckResult{Name: "data_dir"}

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		result.Error = fmt.Sprintf("create %s: %v", cfg.Data.Dir, err)
		result.Latency = time.Since(start)
		return result
	}

	probe := filepath.Join(cfg.Data.Dir, ".health_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		result.Error = fmt.Sprintf("write probe: %v", err)
		result.Latency = time.Since(start)
		return result
	}
	os.Remove(probe)

	result.OK = true
	result.Latency = time.Since(start)
	return result
}

// checkCaseDB opens and pings the fraud case database.
func checkCaseDB(cfg config.Config) CheckResult {
	start := time.Now()
	result := CheckResult{Name: "case_db"}

	db, err := casedb.Open(cfg.Data.FraudDB)
	if err != nil {
		result.Error = fmt.Sprintf("open %s: %v", cfg.Data.FraudDB, err)
		result.Latency = time.Since(start)
		return result
	}
	db.Close()

	result.OK = true
	result.Latency = time.Since(start)
	return result
}
