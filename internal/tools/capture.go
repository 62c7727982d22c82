package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/pocketnetwork/internal/config"
	"github.com/wagnerlima/pocketnetwork/internal/models"
	"github.com/wagnerlima/pocketnetwork/internal/storage"
)

// CaptureTools holds references needed by the meet, event, and inbox
// capture handlers.
type CaptureTools struct {
	Store    *storage.Store
	Settings *config.Holder
}

// --- Input types ---

type LogMeetInput struct {
	PersonID     int64    `json:"person_id,omitempty" jsonschema:"Existing person id; omit together with person_name for an unattributed draft"`
	PersonName   string   `json:"person_name,omitempty" jsonschema:"Person name; found case-insensitively or created as a stub"`
	EventID      int64    `json:"event_id,omitempty" jsonschema:"Event this meet happened at"`
	When         string   `json:"when,omitempty" jsonschema:"When you met (RFC 3339 or YYYY-MM-DD, default now)"`
	Where        string   `json:"where,omitempty" jsonschema:"Where you met"`
	Context      string   `json:"context,omitempty" jsonschema:"What you talked about"`
	NextStep     string   `json:"next_step,omitempty" jsonschema:"Free-form next step note"`
	NextStepType string   `json:"next_step_type,omitempty" jsonschema:"One of message, intro, send_link, coffee, none; anything but none spawns a follow-up"`
	Topics       []string `json:"topics,omitempty" jsonschema:"Up to three conversation topics"`
	Energy       string   `json:"energy,omitempty" jsonschema:"How the meet felt: calm, ok, or chaotic"`
	VoiceNoteURL string   `json:"voice_note_url,omitempty" jsonschema:"Attached voice note reference"`
	IsDraft      bool     `json:"is_draft,omitempty" jsonschema:"Save as a draft to refine later"`
	FollowUpDue  string   `json:"follow_up_due,omitempty" jsonschema:"Explicit due date for the spawned follow-up"`
	Timing       string   `json:"timing,omitempty" jsonschema:"Follow-up delay when no explicit date: 24h, 3d, or 7d (default from settings)"`
	NoFollowUp   bool     `json:"no_follow_up,omitempty" jsonschema:"Suppress the automatic follow-up"`
	Promise      string   `json:"promise,omitempty" jsonschema:"Record a promise made during the meet (requires an attributed person)"`
	PromiseVerb  string   `json:"promise_verb,omitempty" jsonschema:"Kind of promise: intro, send_link, connect, or other"`
	PromiseDue   string   `json:"promise_due,omitempty" jsonschema:"Promise due date"`
}

type UpdateMeetInput struct {
	ID           int64     `json:"id" jsonschema:"Meet id"`
	PersonID     *int64    `json:"person_id,omitempty" jsonschema:"Attribute the meet to this person"`
	EventID      *int64    `json:"event_id,omitempty" jsonschema:"Link the meet to this event"`
	ClearEvent   bool      `json:"clear_event,omitempty" jsonschema:"Detach the meet from its event"`
	When         string    `json:"when,omitempty" jsonschema:"New meet time"`
	Where        *string   `json:"where,omitempty" jsonschema:"New location"`
	Context      *string   `json:"context,omitempty" jsonschema:"New context"`
	NextStep     *string   `json:"next_step,omitempty" jsonschema:"New next step note"`
	Topics       *[]string `json:"topics,omitempty" jsonschema:"Replacement topic list (max three)"`
	Energy       *string   `json:"energy,omitempty" jsonschema:"New energy"`
	VoiceNoteURL *string   `json:"voice_note_url,omitempty" jsonschema:"New voice note reference"`
	Finalize     bool      `json:"finalize,omitempty" jsonschema:"Clear the draft and needs-refining flags"`
}

type ListMeetsInput struct {
	PersonID int64 `json:"person_id,omitempty" jsonschema:"Only meets with this person"`
	EventID  int64 `json:"event_id,omitempty" jsonschema:"Only meets at this event"`
	Drafts   bool  `json:"drafts,omitempty" jsonschema:"Only draft meets"`
}

type MeetIDInput struct {
	ID int64 `json:"id" jsonschema:"Meet id"`
}

type AddEventInput struct {
	Name     string `json:"name" jsonschema:"Event name (required)"`
	Date     string `json:"date" jsonschema:"Event date (RFC 3339 or YYYY-MM-DD, required)"`
	Location string `json:"location,omitempty" jsonschema:"Venue or city"`
	Series   string `json:"series,omitempty" jsonschema:"Recurring series this event belongs to"`
	Notes    string `json:"notes,omitempty" jsonschema:"Free-form notes"`
}

type UpdateEventInput struct {
	ID       int64   `json:"id" jsonschema:"Event id"`
	Name     *string `json:"name,omitempty" jsonschema:"New name"`
	Date     string  `json:"date,omitempty" jsonschema:"New date"`
	Location *string `json:"location,omitempty" jsonschema:"New location"`
	Series   *string `json:"series,omitempty" jsonschema:"New series"`
	Notes    *string `json:"notes,omitempty" jsonschema:"New notes"`
}

type ListEventsInput struct {
	Upcoming bool   `json:"upcoming,omitempty" jsonschema:"Only events from today onward"`
	Series   string `json:"series,omitempty" jsonschema:"Only events in this series"`
}

type EventIDInput struct {
	ID int64 `json:"id" jsonschema:"Event id"`
}

type CaptureDumpInput struct {
	Type    string `json:"type,omitempty" jsonschema:"Capture medium: text, photo, or audio (default text)"`
	Content string `json:"content,omitempty" jsonschema:"Text content (required for text dumps)"`
	BlobURL string `json:"blob_url,omitempty" jsonschema:"Attachment reference (required for photo and audio dumps)"`
	EventID int64  `json:"event_id,omitempty" jsonschema:"Event context for the capture"`
}

type ListDumpsInput struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by status: new, triaged, or archived; omit for all"`
}

type DumpIDInput struct {
	ID int64 `json:"id" jsonschema:"Inbox dump id"`
}

type SearchDumpsInput struct {
	Query string `json:"query" jsonschema:"Full-text query over dump content (supports FTS5 syntax)"`
}

// meetResult pairs a logged meet with the follow-up and promise it
// spawned, if any.
type meetResult struct {
	Meet     models.Meet      `json:"meet"`
	FollowUp *models.FollowUp `json:"followUp,omitempty"`
	Promise  *models.Promise  `json:"promise,omitempty"`
}

// --- Meet handlers ---

func (t *CaptureTools) LogMeet(_ context.Context, _ *mcp.CallToolRequest, input LogMeetInput) (*mcp.CallToolResult, any, error) {
	meet := models.Meet{
		Where:        input.Where,
		Context:      input.Context,
		NextStep:     input.NextStep,
		NextStepType: models.NextStepType(input.NextStepType),
		Topics:       input.Topics,
		Energy:       models.Energy(input.Energy),
		VoiceNoteURL: input.VoiceNoteURL,
		IsDraft:      input.IsDraft,
	}

	switch {
	case input.PersonID != 0:
		if _, err := t.Store.GetPerson(input.PersonID); err != nil {
			return toolError("Failed to resolve person: %v", err), nil, nil
		}
		pid := input.PersonID
		meet.PersonID = &pid
	case input.PersonName != "":
		person, found, err := t.Store.FindPersonByName(input.PersonName)
		if err != nil {
			return toolError("Failed to resolve person: %v", err), nil, nil
		}
		if !found {
			person, err = t.Store.CreatePerson(models.Person{Name: input.PersonName, NeedsRefining: true})
			if err != nil {
				return toolError("Failed to create person: %v", err), nil, nil
			}
		}
		meet.PersonID = &person.ID
	default:
		// Unattributed capture stays a draft until a person is attached.
		meet.IsDraft = true
		meet.NeedsRefining = true
	}

	if input.EventID != 0 {
		eid := input.EventID
		meet.EventID = &eid
	}
	if when, err := parseWhen(input.When); err != nil {
		return toolError("%v", err), nil, nil
	} else if when != nil {
		meet.When = *when
	}

	auto := storage.AutoFollowUp{Suppress: input.NoFollowUp}
	if due, err := parseWhen(input.FollowUpDue); err != nil {
		return toolError("%v", err), nil, nil
	} else if due != nil {
		auto.Due = due
	}
	if input.Timing != "" {
		auto.Timing = models.FollowUpTiming(input.Timing)
	} else {
		auto.Timing = t.Settings.Get().DefaultFollowUpTiming
	}

	if input.Promise != "" && meet.PersonID == nil {
		return toolError("A promise needs an attributed person"), nil, nil
	}

	meet, followUp, err := t.Store.CreateMeet(meet, auto)
	if err != nil {
		return toolError("Failed to log meet: %v", err), nil, nil
	}
	result := meetResult{Meet: meet, FollowUp: followUp}

	if input.Promise != "" {
		promise := models.Promise{
			PersonID:    *meet.PersonID,
			MeetID:      &meet.ID,
			Verb:        models.PromiseVerb(input.PromiseVerb),
			Description: input.Promise,
		}
		if due, err := parseWhen(input.PromiseDue); err != nil {
			return toolError("%v", err), nil, nil
		} else if due != nil {
			promise.DueDate = due
		}
		promise, err := t.Store.CreatePromise(promise)
		if err != nil {
			return toolError("Meet %d logged but the promise failed: %v", meet.ID, err), nil, nil
		}
		result.Promise = &promise
	}

	return toolJSON(result)
}

func (t *CaptureTools) UpdateMeet(_ context.Context, _ *mcp.CallToolRequest, input UpdateMeetInput) (*mcp.CallToolResult, any, error) {
	upd := storage.MeetUpdate{
		PersonID:     input.PersonID,
		EventID:      input.EventID,
		ClearEvent:   input.ClearEvent,
		Where:        input.Where,
		Context:      input.Context,
		NextStep:     input.NextStep,
		Topics:       input.Topics,
		VoiceNoteURL: input.VoiceNoteURL,
	}
	if when, err := parseWhen(input.When); err != nil {
		return toolError("%v", err), nil, nil
	} else if when != nil {
		upd.When = when
	}
	if input.Energy != nil {
		e := models.Energy(*input.Energy)
		upd.Energy = &e
	}
	if input.Finalize {
		f := false
		upd.IsDraft = &f
		upd.NeedsRefining = &f
	}

	meet, err := t.Store.UpdateMeet(input.ID, upd)
	if err != nil {
		return toolError("Failed to update meet: %v", err), nil, nil
	}
	return toolJSON(meet)
}

func (t *CaptureTools) ListMeets(_ context.Context, _ *mcp.CallToolRequest, input ListMeetsInput) (*mcp.CallToolResult, any, error) {
	var (
		meets []models.Meet
		err   error
	)
	switch {
	case input.PersonID != 0:
		meets, err = t.Store.MeetsByPerson(input.PersonID)
	case input.EventID != 0:
		meets, err = t.Store.MeetsByEvent(input.EventID)
	case input.Drafts:
		meets, err = t.Store.DraftMeets()
	default:
		meets, err = t.Store.ListMeets()
	}
	if err != nil {
		return toolError("Failed to list meets: %v", err), nil, nil
	}
	if meets == nil {
		meets = []models.Meet{}
	}
	return toolJSON(meets)
}

func (t *CaptureTools) DeleteMeet(_ context.Context, _ *mcp.CallToolRequest, input MeetIDInput) (*mcp.CallToolResult, any, error) {
	if err := t.Store.DeleteMeet(input.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return toolError("Meet %d not found", input.ID), nil, nil
		}
		return toolError("Failed to delete meet: %v", err), nil, nil
	}
	return toolText(fmt.Sprintf("Meet %d deleted; its follow-ups and promises were kept.", input.ID)), nil, nil
}

// --- Event handlers ---

func (t *CaptureTools) AddEvent(_ context.Context, _ *mcp.CallToolRequest, input AddEventInput) (*mcp.CallToolResult, any, error) {
	date, err := parseWhen(input.Date)
	if err != nil {
		return toolError("%v", err), nil, nil
	}
	event := models.Event{
		Name:     input.Name,
		Location: input.Location,
		Series:   input.Series,
		Notes:    input.Notes,
	}
	if date != nil {
		event.Date = *date
	}

	event, err = t.Store.CreateEvent(event)
	if err != nil {
		return toolError("Failed to add event: %v", err), nil, nil
	}
	return toolJSON(event)
}

func (t *CaptureTools) UpdateEvent(_ context.Context, _ *mcp.CallToolRequest, input UpdateEventInput) (*mcp.CallToolResult, any, error) {
	upd := storage.EventUpdate{
		Name:     input.Name,
		Location: input.Location,
		Series:   input.Series,
		Notes:    input.Notes,
	}
	if date, err := parseWhen(input.Date); err != nil {
		return toolError("%v", err), nil, nil
	} else if date != nil {
		upd.Date = date
	}

	event, err := t.Store.UpdateEvent(input.ID, upd)
	if err != nil {
		return toolError("Failed to update event: %v", err), nil, nil
	}
	return toolJSON(event)
}

func (t *CaptureTools) ListEvents(_ context.Context, _ *mcp.CallToolRequest, input ListEventsInput) (*mcp.CallToolResult, any, error) {
	var (
		events []models.Event
		err    error
	)
	switch {
	case input.Series != "":
		events, err = t.Store.EventsBySeries(input.Series)
	case input.Upcoming:
		events, err = t.Store.UpcomingEvents(startOfToday())
	default:
		events, err = t.Store.ListEvents()
	}
	if err != nil {
		return toolError("Failed to list events: %v", err), nil, nil
	}
	if events == nil {
		events = []models.Event{}
	}
	return toolJSON(events)
}

func (t *CaptureTools) DeleteEvent(_ context.Context, _ *mcp.CallToolRequest, input EventIDInput) (*mcp.CallToolResult, any, error) {
	if err := t.Store.DeleteEvent(input.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return toolError("Event %d not found", input.ID), nil, nil
		}
		return toolError("Failed to delete event: %v", err), nil, nil
	}
	return toolText(fmt.Sprintf("Event %d deleted; meets and dumps that referenced it were detached.", input.ID)), nil, nil
}

// --- Inbox dump handlers ---

func (t *CaptureTools) CaptureDump(_ context.Context, _ *mcp.CallToolRequest, input CaptureDumpInput) (*mcp.CallToolResult, any, error) {
	dumpType := models.DumpType(input.Type)
	if input.Type == "" {
		dumpType = models.DumpText
	}
	dump := models.InboxDump{
		Type:    dumpType,
		Content: input.Content,
		BlobURL: input.BlobURL,
	}
	if input.EventID != 0 {
		eid := input.EventID
		dump.EventID = &eid
	}

	dump, err := t.Store.CreateDump(dump)
	if err != nil {
		return toolError("Failed to capture dump: %v", err), nil, nil
	}
	return toolJSON(dump)
}

func (t *CaptureTools) ListDumps(_ context.Context, _ *mcp.CallToolRequest, input ListDumpsInput) (*mcp.CallToolResult, any, error) {
	var (
		dumps []models.InboxDump
		err   error
	)
	if input.Status != "" {
		dumps, err = t.Store.DumpsByStatus(models.DumpStatus(input.Status), 0)
	} else {
		dumps, err = t.Store.ListDumps()
	}
	if err != nil {
		return toolError("Failed to list dumps: %v", err), nil, nil
	}
	if dumps == nil {
		dumps = []models.InboxDump{}
	}
	return toolJSON(dumps)
}

func (t *CaptureTools) SearchDumps(_ context.Context, _ *mcp.CallToolRequest, input SearchDumpsInput) (*mcp.CallToolResult, any, error) {
	if input.Query == "" {
		return toolError("Search query is required"), nil, nil
	}
	dumps, err := t.Store.SearchDumps(input.Query)
	if err != nil {
		return toolError("Search failed: %v", err), nil, nil
	}
	if dumps == nil {
		dumps = []models.InboxDump{}
	}
	return toolJSON(dumps)
}

func (t *CaptureTools) ArchiveDump(_ context.Context, _ *mcp.CallToolRequest, input DumpIDInput) (*mcp.CallToolResult, any, error) {
	dump, err := t.Store.ArchiveDump(input.ID)
	if err != nil {
		return toolError("Failed to archive dump: %v", err), nil, nil
	}
	return toolJSON(dump)
}

func (t *CaptureTools) RestoreDump(_ context.Context, _ *mcp.CallToolRequest, input DumpIDInput) (*mcp.CallToolResult, any, error) {
	dump, err := t.Store.RestoreDump(input.ID)
	if err != nil {
		return toolError("Failed to restore dump: %v", err), nil, nil
	}
	return toolJSON(dump)
}

func (t *CaptureTools) DeleteDump(_ context.Context, _ *mcp.CallToolRequest, input DumpIDInput) (*mcp.CallToolResult, any, error) {
	if err := t.Store.DeleteDump(input.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return toolError("Dump %d not found", input.ID), nil, nil
		}
		return toolError("Failed to delete dump: %v", err), nil, nil
	}
	return toolText(fmt.Sprintf("Dump %d deleted.", input.ID)), nil, nil
}
