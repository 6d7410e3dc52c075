package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsAreValid(t *testing.T) {
	d := Defaults()
	if err := d.validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if d.EvictRadius != 0 {
		t.Fatalf("default evict_radius = %d, want 0 (never evict)", d.EvictRadius)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := `
tick_rate_hz: 20
square_size: 250.5
detail: 6
roughness: 2.5
seed: 99
evict_radius: 12
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.TickRateHz != 20 || got.SquareSize != 250.5 || got.Detail != 6 || got.Roughness != 2.5 {
		t.Fatalf("unexpected tuning: %+v", got)
	}
	if got.Seed != 99 || got.EvictRadius != 12 {
		t.Fatalf("unexpected tuning: %+v", got)
	}
	// Untouched keys keep their defaults.
	if got.SnapshotEveryTicks != Defaults().SnapshotEveryTicks {
		t.Fatalf("snapshot_every_ticks = %d, want default", got.SnapshotEveryTicks)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("detail: 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("detail 0 accepted")
	}
}
