package tools

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/pocketnetwork/internal/config"
	"github.com/wagnerlima/pocketnetwork/internal/export"
	"github.com/wagnerlima/pocketnetwork/internal/models"
	"github.com/wagnerlima/pocketnetwork/internal/storage"
)

// DataTools holds references needed by the backup, import, and settings
// handlers.
type DataTools struct {
	Store    *storage.Store
	Settings *config.Holder
}

// --- Input types ---

type ExportJSONInput struct {
	Path         string `json:"path,omitempty" jsonschema:"Write the snapshot to this file instead of returning it inline"`
	IncludeMedia bool   `json:"include_media,omitempty" jsonschema:"Keep photo, voice note, and attachment references in the snapshot"`
}

type ImportJSONInput struct {
	Path string `json:"path,omitempty" jsonschema:"Read the snapshot from this file"`
	Data string `json:"data,omitempty" jsonschema:"Inline snapshot JSON; used when path is empty"`
}

type ExportCSVInput struct {
	Table string `json:"table" jsonschema:"Table to export: people, meets, events, followUps, promises, or inboxDumps"`
}

type ImportPeopleCSVInput struct {
	Path string `json:"path,omitempty" jsonschema:"Read the CSV from this file"`
	Data string `json:"data,omitempty" jsonschema:"Inline CSV content; used when path is empty"`
}

type UpdateSettingsInput struct {
	Theme              *string `json:"theme,omitempty" jsonschema:"UI theme: dark, light, or auto"`
	NudgeIntensity     *string `json:"nudge_intensity,omitempty" jsonschema:"Nudge cap: low (1 at a time) or medium (3)"`
	DefaultTiming      *string `json:"default_timing,omitempty" jsonschema:"Default follow-up delay: 24h, 3d, or 7d"`
	CalendarReminders  *bool   `json:"calendar_reminders,omitempty" jsonschema:"Attach reminder alarms to exported follow-ups"`
	OnboardingComplete *bool   `json:"onboarding_complete,omitempty" jsonschema:"Mark first-run onboarding as done"`
}

// --- Backup handlers ---

func (t *DataTools) ExportJSON(_ context.Context, _ *mcp.CallToolRequest, input ExportJSONInput) (*mcp.CallToolResult, any, error) {
	data, err := export.JSON(t.Store, t.Settings.Get(), input.IncludeMedia, time.Now())
	if err != nil {
		return toolError("Export failed: %v", err), nil, nil
	}

	if input.Path != "" {
		if err := export.WriteSnapshot(input.Path, data); err != nil {
			return toolError("Export failed: %v", err), nil, nil
		}
		return toolText("Snapshot written to " + input.Path), nil, nil
	}
	return toolText(string(data)), nil, nil
}

func (t *DataTools) ImportJSON(_ context.Context, _ *mcp.CallToolRequest, input ImportJSONInput) (*mcp.CallToolResult, any, error) {
	data := []byte(input.Data)
	if input.Path != "" {
		var err error
		if data, err = os.ReadFile(input.Path); err != nil {
			return toolError("Failed to read snapshot: %v", err), nil, nil
		}
	}
	if len(data) == 0 {
		return toolError("Provide either a path or inline snapshot data"), nil, nil
	}

	res, err := export.ImportJSON(t.Store, data)
	if err != nil {
		return toolError("Import failed: %v", err), nil, nil
	}
	if res.Settings != nil {
		if _, err := t.Settings.Set(*res.Settings); err != nil {
			return toolError("Import applied but settings were not saved: %v", err), nil, nil
		}
	}
	return toolJSON(res)
}

func (t *DataTools) ExportCSV(_ context.Context, _ *mcp.CallToolRequest, input ExportCSVInput) (*mcp.CallToolResult, any, error) {
	table := storage.Table(input.Table)
	doc, err := export.CSV(t.Store, table)
	if err != nil {
		return toolError("Export failed: %v", err), nil, nil
	}
	return toolText(doc), nil, nil
}

func (t *DataTools) ImportPeopleCSV(_ context.Context, _ *mcp.CallToolRequest, input ImportPeopleCSVInput) (*mcp.CallToolResult, any, error) {
	data := input.Data
	if input.Path != "" {
		raw, err := os.ReadFile(input.Path)
		if err != nil {
			return toolError("Failed to read CSV: %v", err), nil, nil
		}
		data = string(raw)
	}
	if data == "" {
		return toolError("Provide either a path or inline CSV data"), nil, nil
	}

	res, err := export.ImportPeopleCSV(t.Store, strings.NewReader(data), nil)
	if err != nil {
		return toolError("Import failed: %v", err), nil, nil
	}
	return toolJSON(res)
}

// --- Settings handlers ---

func (t *DataTools) GetSettings(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.Settings.Get())
}

func (t *DataTools) UpdateSettings(_ context.Context, _ *mcp.CallToolRequest, input UpdateSettingsInput) (*mcp.CallToolResult, any, error) {
	s := t.Settings.Get()
	if input.Theme != nil {
		s.Theme = config.Theme(*input.Theme)
	}
	if input.NudgeIntensity != nil {
		s.NudgeIntensity = config.NudgeIntensity(*input.NudgeIntensity)
	}
	if input.DefaultTiming != nil {
		s.DefaultFollowUpTiming = models.FollowUpTiming(*input.DefaultTiming)
	}
	if input.CalendarReminders != nil {
		s.CalendarRemindersEnabled = *input.CalendarReminders
	}
	if input.OnboardingComplete != nil {
		s.OnboardingComplete = *input.OnboardingComplete
	}

	s, err := t.Settings.Set(s)
	if err != nil {
		return toolError("Failed to save settings: %v", err), nil, nil
	}
	return toolJSON(s)
}
