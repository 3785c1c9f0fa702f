package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"actorruntime/yield"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadFullFile verifies every field round-trips from JSON.
func TestLoadFullFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sched.json", `{
		"workers": 4,
		"strategy": "aggressive",
		"core_base": 2,
		"cooldown_ms": 250,
		"telemetry": {"enabled": true, "path": "t.db", "interval_ms": 100}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 4 || cfg.CoreBase != 2 {
		t.Fatalf("worker fields wrong: %+v", cfg)
	}
	if cfg.YieldStrategy() != yield.StrategyAggressive {
		t.Fatalf("strategy = %v", cfg.YieldStrategy())
	}
	if cfg.Cooldown() != 250*time.Millisecond {
		t.Fatalf("cooldown = %v", cfg.Cooldown())
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.Path != "t.db" {
		t.Fatalf("telemetry fields wrong: %+v", cfg.Telemetry)
	}
	if cfg.TelemetryInterval() != 100*time.Millisecond {
		t.Fatalf("interval = %v", cfg.TelemetryInterval())
	}
}

// TestLoadPartialFileKeepsDefaults confirms omitted fields inherit the
// compiled defaults rather than JSON zero values.
func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sched.json", `{"strategy": "strong"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.YieldStrategy() != yield.StrategyStrong {
		t.Fatalf("strategy = %v", cfg.YieldStrategy())
	}
	if cfg.Workers != def.Workers || cfg.CoreBase != def.CoreBase {
		t.Fatalf("defaults not preserved: %+v", cfg)
	}
	if cfg.Telemetry.Path != def.Telemetry.Path {
		t.Fatalf("telemetry default lost: %+v", cfg.Telemetry)
	}
}

// TestLoadRejectsUnknownStrategy pins the closed-enumeration contract: a
// typo must fail loudly, not demote the deployment to the default.
func TestLoadRejectsUnknownStrategy(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sched.json", `{"strategy": "turbo"}`)
	if _, err := Load(path); err == nil {
		t.Fatal("unknown strategy accepted")
	}
}

// TestLoadRejectsMalformedJSON verifies parse failures surface as errors.
func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sched.json", `{"workers": `)
	if _, err := Load(path); err == nil {
		t.Fatal("malformed JSON accepted")
	}
}

// TestLoadMissingFile verifies the not-exist error passes through so
// callers can distinguish absence from corruption.
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !os.IsNotExist(err) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

// TestGentleAliasesPolite accepts the alternate spelling used in older
// deployments.
func TestGentleAliasesPolite(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sched.json", `{"strategy": "gentle"}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.YieldStrategy() != yield.StrategyPolite {
		t.Fatalf("gentle mapped to %v", cfg.YieldStrategy())
	}
}

// TestWatchDeliversReload rewrites the watched file and expects the parsed
// result on the callback within a generous deadline.
func TestWatchDeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sched.json", `{"workers": 1}`)

	reloads := make(chan Config, 4)
	stop, err := Watch(path, func(c Config) { reloads <- c })
	if err != nil {
		t.Fatal(err)
	}
	defer stop()

	// Give the watcher a moment to arm before the rewrite.
	time.Sleep(50 * time.Millisecond)
	writeFile(t, dir, "sched.json", `{"workers": 3}`)

	select {
	case cfg := <-reloads:
		if cfg.Workers != 3 {
			t.Fatalf("reloaded workers = %d, want 3", cfg.Workers)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload delivered")
	}
}

// TestWatchDropsMalformedReload rewrites the file with garbage and then
// with a valid config; only the valid one may arrive.
func TestWatchDropsMalformedReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sched.json", `{"workers": 1}`)

	reloads := make(chan Config, 4)
	stop, err := Watch(path, func(c Config) { reloads <- c })
	if err != nil {
		t.Fatal(err)
	}
	defer stop()

	time.Sleep(50 * time.Millisecond)
	writeFile(t, dir, "sched.json", `{"workers": `)
	time.Sleep(50 * time.Millisecond)
	writeFile(t, dir, "sched.json", `{"workers": 7}`)

	select {
	case cfg := <-reloads:
		if cfg.Workers != 7 {
			t.Fatalf("malformed reload leaked through: %+v", cfg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload delivered")
	}
}
