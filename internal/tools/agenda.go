package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/pocketnetwork/internal/config"
	"github.com/wagnerlima/pocketnetwork/internal/export"
	"github.com/wagnerlima/pocketnetwork/internal/models"
	"github.com/wagnerlima/pocketnetwork/internal/schedule"
	"github.com/wagnerlima/pocketnetwork/internal/storage"
)

// AgendaTools holds references needed by the follow-up, promise, and
// today-view handlers.
type AgendaTools struct {
	Store    *storage.Store
	Feed     *schedule.Feed
	Settings *config.Holder
}

// --- Input types ---

type AddFollowUpInput struct {
	PersonID    int64  `json:"person_id" jsonschema:"Person the follow-up is about (required)"`
	MeetID      int64  `json:"meet_id,omitempty" jsonschema:"Meet that prompted it"`
	Description string `json:"description" jsonschema:"What to do (required)"`
	DueDate     string `json:"due_date" jsonschema:"When it is due (RFC 3339 or YYYY-MM-DD, required)"`
	Priority    string `json:"priority,omitempty" jsonschema:"low, medium, or high (default medium)"`
	DraftTone   string `json:"draft_tone,omitempty" jsonschema:"Voice for a drafted message: warm or direct"`
}

type UpdateFollowUpInput struct {
	ID          int64   `json:"id" jsonschema:"Follow-up id"`
	Description *string `json:"description,omitempty" jsonschema:"New description"`
	DueDate     string  `json:"due_date,omitempty" jsonschema:"New due date"`
	Priority    *string `json:"priority,omitempty" jsonschema:"New priority"`
	DraftTone   *string `json:"draft_tone,omitempty" jsonschema:"New draft tone"`
}

type ListFollowUpsInput struct {
	PersonID int64 `json:"person_id,omitempty" jsonschema:"Only follow-ups for this person"`
	All      bool  `json:"all,omitempty" jsonschema:"Include completed follow-ups"`
}

type FollowUpIDInput struct {
	ID int64 `json:"id" jsonschema:"Follow-up id"`
}

type SnoozeFollowUpInput struct {
	ID   int64 `json:"id" jsonschema:"Follow-up id"`
	Days int   `json:"days" jsonschema:"How many days to push the due date (must be positive)"`
}

type HideFollowUpInput struct {
	ID    int64  `json:"id" jsonschema:"Follow-up id"`
	Until string `json:"until" jsonschema:"Hide from views until this time without moving the due date"`
}

type MakePromiseInput struct {
	PersonID    int64  `json:"person_id" jsonschema:"Person the promise was made to (required)"`
	MeetID      int64  `json:"meet_id,omitempty" jsonschema:"Meet where it was made"`
	Verb        string `json:"verb,omitempty" jsonschema:"Kind of promise: intro, send_link, connect, or other"`
	Description string `json:"description" jsonschema:"What was promised (required)"`
	DueDate     string `json:"due_date,omitempty" jsonschema:"Optional due date"`
}

type ListPromisesInput struct {
	PersonID int64 `json:"person_id,omitempty" jsonschema:"Only promises to this person"`
	All      bool  `json:"all,omitempty" jsonschema:"Include completed promises"`
}

type PromiseIDInput struct {
	ID int64 `json:"id" jsonschema:"Promise id"`
}

// --- Follow-up handlers ---

func (t *AgendaTools) AddFollowUp(_ context.Context, _ *mcp.CallToolRequest, input AddFollowUpInput) (*mcp.CallToolResult, any, error) {
	due, err := parseWhen(input.DueDate)
	if err != nil {
		return toolError("%v", err), nil, nil
	}

	f := models.FollowUp{
		PersonID:    input.PersonID,
		Description: input.Description,
		Priority:    models.Priority(input.Priority),
		DraftTone:   models.DraftTone(input.DraftTone),
	}
	if due != nil {
		f.DueDate = *due
	}
	if input.MeetID != 0 {
		mid := input.MeetID
		f.MeetID = &mid
	}

	f, err = t.Store.CreateFollowUp(f)
	if err != nil {
		return toolError("Failed to add follow-up: %v", err), nil, nil
	}
	return toolJSON(f)
}

func (t *AgendaTools) UpdateFollowUp(_ context.Context, _ *mcp.CallToolRequest, input UpdateFollowUpInput) (*mcp.CallToolResult, any, error) {
	upd := storage.FollowUpUpdate{Description: input.Description}
	if due, err := parseWhen(input.DueDate); err != nil {
		return toolError("%v", err), nil, nil
	} else if due != nil {
		upd.DueDate = due
	}
	if input.Priority != nil {
		p := models.Priority(*input.Priority)
		upd.Priority = &p
	}
	if input.DraftTone != nil {
		tone := models.DraftTone(*input.DraftTone)
		upd.DraftTone = &tone
	}

	f, err := t.Store.UpdateFollowUp(input.ID, upd)
	if err != nil {
		return toolError("Failed to update follow-up: %v", err), nil, nil
	}
	return toolJSON(f)
}

func (t *AgendaTools) ListFollowUps(_ context.Context, _ *mcp.CallToolRequest, input ListFollowUpsInput) (*mcp.CallToolResult, any, error) {
	var (
		followUps []models.FollowUp
		err       error
	)
	switch {
	case input.PersonID != 0:
		followUps, err = t.Store.FollowUpsByPerson(input.PersonID)
	case input.All:
		followUps, err = t.Store.ListFollowUps()
	default:
		followUps, err = t.Store.PendingFollowUps()
	}
	if err != nil {
		return toolError("Failed to list follow-ups: %v", err), nil, nil
	}
	if followUps == nil {
		followUps = []models.FollowUp{}
	}
	return toolJSON(followUps)
}

func (t *AgendaTools) CompleteFollowUp(_ context.Context, _ *mcp.CallToolRequest, input FollowUpIDInput) (*mcp.CallToolResult, any, error) {
	f, err := t.Store.CompleteFollowUp(input.ID)
	if err != nil {
		return toolError("Failed to complete follow-up: %v", err), nil, nil
	}
	return toolJSON(f)
}

func (t *AgendaTools) SnoozeFollowUp(_ context.Context, _ *mcp.CallToolRequest, input SnoozeFollowUpInput) (*mcp.CallToolResult, any, error) {
	f, err := t.Store.SnoozeFollowUp(input.ID, input.Days)
	if err != nil {
		return toolError("Failed to snooze follow-up: %v", err), nil, nil
	}
	return toolJSON(f)
}

func (t *AgendaTools) HideFollowUp(_ context.Context, _ *mcp.CallToolRequest, input HideFollowUpInput) (*mcp.CallToolResult, any, error) {
	until, err := parseWhen(input.Until)
	if err != nil {
		return toolError("%v", err), nil, nil
	}
	if until == nil {
		return toolError("until is required"), nil, nil
	}

	f, err := t.Store.HideFollowUpUntil(input.ID, *until)
	if err != nil {
		return toolError("Failed to hide follow-up: %v", err), nil, nil
	}
	return toolJSON(f)
}

func (t *AgendaTools) DeleteFollowUp(_ context.Context, _ *mcp.CallToolRequest, input FollowUpIDInput) (*mcp.CallToolResult, any, error) {
	if err := t.Store.DeleteFollowUp(input.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return toolError("Follow-up %d not found", input.ID), nil, nil
		}
		return toolError("Failed to delete follow-up: %v", err), nil, nil
	}
	return toolText(fmt.Sprintf("Follow-up %d deleted.", input.ID)), nil, nil
}

// --- Promise handlers ---

func (t *AgendaTools) MakePromise(_ context.Context, _ *mcp.CallToolRequest, input MakePromiseInput) (*mcp.CallToolResult, any, error) {
	due, err := parseWhen(input.DueDate)
	if err != nil {
		return toolError("%v", err), nil, nil
	}

	p := models.Promise{
		PersonID:    input.PersonID,
		Verb:        models.PromiseVerb(input.Verb),
		Description: input.Description,
		DueDate:     due,
	}
	if input.MeetID != 0 {
		mid := input.MeetID
		p.MeetID = &mid
	}

	p, err = t.Store.CreatePromise(p)
	if err != nil {
		return toolError("Failed to make promise: %v", err), nil, nil
	}
	return toolJSON(p)
}

func (t *AgendaTools) ListPromises(_ context.Context, _ *mcp.CallToolRequest, input ListPromisesInput) (*mcp.CallToolResult, any, error) {
	var (
		promises []models.Promise
		err      error
	)
	switch {
	case input.PersonID != 0:
		promises, err = t.Store.PromisesByPerson(input.PersonID)
	case input.All:
		promises, err = t.Store.ListPromises()
	default:
		promises, err = t.Store.PendingPromises()
	}
	if err != nil {
		return toolError("Failed to list promises: %v", err), nil, nil
	}
	if promises == nil {
		promises = []models.Promise{}
	}
	return toolJSON(promises)
}

func (t *AgendaTools) CompletePromise(_ context.Context, _ *mcp.CallToolRequest, input PromiseIDInput) (*mcp.CallToolResult, any, error) {
	p, err := t.Store.CompletePromise(input.ID)
	if err != nil {
		return toolError("Failed to complete promise: %v", err), nil, nil
	}
	return toolJSON(p)
}

func (t *AgendaTools) DeletePromise(_ context.Context, _ *mcp.CallToolRequest, input PromiseIDInput) (*mcp.CallToolResult, any, error) {
	if err := t.Store.DeletePromise(input.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return toolError("Promise %d not found", input.ID), nil, nil
		}
		return toolError("Failed to delete promise: %v", err), nil, nil
	}
	return toolText(fmt.Sprintf("Promise %d deleted.", input.ID)), nil, nil
}

// --- Today view and calendar ---

func (t *AgendaTools) TodayView(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	view, err := t.Feed.View(time.Now())
	if err != nil {
		return toolError("Failed to compute today view: %v", err), nil, nil
	}
	return toolJSON(view)
}

// ExportCalendar renders the pending follow-ups and upcoming events as
// an iCalendar document. Follow-up reminders honor the calendar
// reminders setting.
func (t *AgendaTools) ExportCalendar(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	now := time.Now()
	reminders := t.Settings.Get().CalendarRemindersEnabled

	followUps, err := t.Store.PendingFollowUps()
	if err != nil {
		return toolError("Failed to load follow-ups: %v", err), nil, nil
	}
	events, err := t.Store.UpcomingEvents(startOfToday())
	if err != nil {
		return toolError("Failed to load events: %v", err), nil, nil
	}

	var entries []export.CalendarEvent
	for _, f := range followUps {
		person, err := t.Store.GetPerson(f.PersonID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return toolError("Failed to resolve person: %v", err), nil, nil
		}
		entry := export.FollowUpEvent(f, person.Name)
		entry.Alarm = entry.Alarm && reminders
		entries = append(entries, entry)
	}
	for _, e := range events {
		entries = append(entries, export.EventEntry(e))
	}

	return toolText(export.GenerateICS(entries, now)), nil, nil
}
