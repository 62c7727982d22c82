// Package config holds the explicit, explicitly-initialized settings
// record that replaces ad-hoc key-value preference reads. It is loaded
// once at startup and injected into the components that need it.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/wagnerlima/pocketnetwork/internal/models"
)

// Theme is the UI color preference. The model never interprets it; it
// is stored and exported so a rendering layer can.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
	ThemeAuto  Theme = "auto"
)

// NudgeIntensity caps how many attention-demanding follow-ups surface
// at once.
type NudgeIntensity string

const (
	IntensityLow    NudgeIntensity = "low"
	IntensityMedium NudgeIntensity = "medium"
)

// Settings is the single configuration record.
type Settings struct {
	Theme                    Theme                 `json:"theme"`
	NudgeIntensity           NudgeIntensity        `json:"nudgeIntensity"`
	DefaultFollowUpTiming    models.FollowUpTiming `json:"defaultFollowUpTiming"`
	CalendarRemindersEnabled bool                  `json:"calendarRemindersEnabled"`
	OnboardingComplete       bool                  `json:"onboardingComplete"`
}

// Default returns the documented defaults.
func Default() Settings {
	return Settings{
		Theme:                    ThemeDark,
		NudgeIntensity:           IntensityLow,
		DefaultFollowUpTiming:    models.Timing3d,
		CalendarRemindersEnabled: true,
	}
}

// MaxNudges returns the nudge cap for the configured intensity:
// low surfaces 1 item, medium 3.
func (s Settings) MaxNudges() int {
	if s.NudgeIntensity == IntensityMedium {
		return 3
	}
	return 1
}

// Load reads settings from path. A missing file yields the defaults;
// the file may contain comments and trailing commas (HuJSON). Unknown
// enum values are normalized back to their defaults rather than
// rejected, so a hand-edited file cannot brick startup.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := json.Unmarshal(standardized, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}

	return s.normalize(), nil
}

// Save writes settings to path atomically.
func Save(path string, s Settings) error {
	data, err := json.MarshalIndent(s.normalize(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	data = append(data, '\n')
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func (s Settings) normalize() Settings {
	switch s.Theme {
	case ThemeLight, ThemeAuto:
	default:
		s.Theme = ThemeDark
	}
	if s.NudgeIntensity != IntensityMedium {
		s.NudgeIntensity = IntensityLow
	}
	switch s.DefaultFollowUpTiming {
	case models.Timing24h, models.Timing7d:
	default:
		s.DefaultFollowUpTiming = models.Timing3d
	}
	return s
}
