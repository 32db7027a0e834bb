package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("stale_after_hours: 30\nencounters:\n  wartime_factor: 1.5\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tu, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tu.StaleAfterHours != 30 || tu.Encounters.WartimeFactor != 1.5 {
		t.Fatalf("overrides not applied: %+v", tu)
	}
	if tu.Hunger.StarvingAfterDays != 3 || tu.Encounters.LevelBelow != 3 {
		t.Fatalf("defaults lost: %+v", tu)
	}
}

func TestLoadRejectsNonIncreasingHungerThresholds(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("hunger:\n  starving_after_days: 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestShippedTuningFileLoads(t *testing.T) {
	if _, err := Load(filepath.Join("..", "..", "..", "configs", "tuning.yaml")); err != nil {
		t.Fatalf("Load shipped tuning: %v", err)
	}
}
