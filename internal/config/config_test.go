package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wagnerlima/pocketnetwork/internal/models"
)

func settingsPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "pocketnetwork-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "settings.json")
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	s, err := Load(settingsPath(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), s); diff != "" {
		t.Errorf("Defaults mismatch (-want +got):\n%s", diff)
	}
	if s.MaxNudges() != 1 {
		t.Errorf("Default MaxNudges = %d, want 1", s.MaxNudges())
	}
}

func TestLoadAcceptsComments(t *testing.T) {
	path := settingsPath(t)
	content := `{
  // hand-edited
  "theme": "light",
  "nudgeIntensity": "medium",
  "defaultFollowUpTiming": "7d",
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Theme != ThemeLight {
		t.Errorf("Theme = %q", s.Theme)
	}
	if s.MaxNudges() != 3 {
		t.Errorf("MaxNudges = %d, want 3 for medium", s.MaxNudges())
	}
	if s.DefaultFollowUpTiming != models.Timing7d {
		t.Errorf("Timing = %q", s.DefaultFollowUpTiming)
	}
}

func TestLoadNormalizesUnknownValues(t *testing.T) {
	path := settingsPath(t)
	content := `{"theme": "neon", "nudgeIntensity": "extreme", "defaultFollowUpTiming": "next year"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not reject a hand-edited file: %v", err)
	}
	if s.Theme != ThemeDark || s.NudgeIntensity != IntensityLow || s.DefaultFollowUpTiming != models.Timing3d {
		t.Errorf("Normalized = %+v", s)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := settingsPath(t)

	want := Settings{
		Theme:                    ThemeAuto,
		NudgeIntensity:           IntensityMedium,
		DefaultFollowUpTiming:    models.Timing24h,
		CalendarRemindersEnabled: true,
		OnboardingComplete:       true,
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestHolderPersistsUpdates(t *testing.T) {
	path := settingsPath(t)

	h, err := NewHolder(path)
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}

	s := h.Get()
	s.NudgeIntensity = IntensityMedium
	if _, err := h.Set(s); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// A fresh holder sees the saved record.
	h2, err := NewHolder(path)
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	if h2.Get().NudgeIntensity != IntensityMedium {
		t.Errorf("Persisted intensity = %q", h2.Get().NudgeIntensity)
	}
}
