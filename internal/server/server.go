package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/pocketnetwork/internal/config"
	"github.com/wagnerlima/pocketnetwork/internal/schedule"
	"github.com/wagnerlima/pocketnetwork/internal/storage"
	"github.com/wagnerlima/pocketnetwork/internal/tools"
)

// New creates a fully configured MCP server with all tools registered.
// The returned feed must be closed when the server shuts down.
func New(store *storage.Store, settings *config.Holder) (*mcp.Server, *schedule.Feed) {
	feed := schedule.NewFeed(store, func() config.NudgeIntensity {
		return settings.Get().NudgeIntensity
	})

	pt := &tools.PeopleTools{Store: store}
	ct := &tools.CaptureTools{Store: store, Settings: settings}
	at := &tools.AgendaTools{Store: store, Feed: feed, Settings: settings}
	tt := &tools.TriageTools{Store: store}
	dt := &tools.DataTools{Store: store, Settings: settings}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "pocketnetwork",
		Version: "0.1.0",
	}, nil)

	// People
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "add_person",
		Description: "Add a person to your network",
	}, pt.AddPerson)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_person",
		Description: "Update a person's details; only provided fields change",
	}, pt.UpdatePerson)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_person",
		Description: "Get a person with their meets, follow-ups, and promises",
	}, pt.GetPerson)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_people",
		Description: "List people, optionally only stub contacts that need refining",
	}, pt.ListPeople)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_people",
		Description: "Full-text search over names, companies, and notes",
	}, pt.SearchPeople)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_person",
		Description: "Delete a person and everything recorded about them (irreversible)",
	}, pt.DeletePerson)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "export_vcard",
		Description: "Export one contact (or all) as vCard 3.0",
	}, pt.ExportVCard)

	// Capture: meets, events, inbox dumps
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "log_meet",
		Description: "Record that you met someone; a next step other than none spawns a follow-up",
	}, ct.LogMeet)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_meet",
		Description: "Update a meet; only provided fields change",
	}, ct.UpdateMeet)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_meets",
		Description: "List meets, filtered by person, event, or draft status",
	}, ct.ListMeets)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_meet",
		Description: "Delete a meet; follow-ups and promises it spawned are kept",
	}, ct.DeleteMeet)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "add_event",
		Description: "Add an event (conference, meetup, dinner) you met people at",
	}, ct.AddEvent)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_event",
		Description: "Update an event; only provided fields change",
	}, ct.UpdateEvent)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_events",
		Description: "List events, optionally upcoming only or by series",
	}, ct.ListEvents)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_event",
		Description: "Delete an event; meets and captures that referenced it are detached",
	}, ct.DeleteEvent)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "capture_dump",
		Description: "Capture a quick unsorted note, photo, or voice memo into the inbox",
	}, ct.CaptureDump)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_dumps",
		Description: "List inbox captures, optionally by status (new, triaged, archived)",
	}, ct.ListDumps)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_dumps",
		Description: "Full-text search over inbox capture content",
	}, ct.SearchDumps)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "archive_dump",
		Description: "Archive an inbox capture without converting it",
	}, ct.ArchiveDump)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "restore_dump",
		Description: "Return an archived capture to the inbox",
	}, ct.RestoreDump)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_dump",
		Description: "Permanently delete an inbox capture",
	}, ct.DeleteDump)

	// Agenda: follow-ups, promises, today view
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "add_follow_up",
		Description: "Add a follow-up for a person with a due date",
	}, at.AddFollowUp)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_follow_up",
		Description: "Update a follow-up's description, due date, priority, or tone",
	}, at.UpdateFollowUp)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_follow_ups",
		Description: "List follow-ups: pending by default, by person, or all",
	}, at.ListFollowUps)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "complete_follow_up",
		Description: "Mark a follow-up done (terminal; completing twice is a no-op)",
	}, at.CompleteFollowUp)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "snooze_follow_up",
		Description: "Push a follow-up's due date forward by N days",
	}, at.SnoozeFollowUp)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "hide_follow_up",
		Description: "Hide a follow-up from views until a time, without moving its due date",
	}, at.HideFollowUp)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_follow_up",
		Description: "Delete a follow-up",
	}, at.DeleteFollowUp)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "make_promise",
		Description: "Record a promise you made to someone",
	}, at.MakePromise)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_promises",
		Description: "List promises: pending by default, by person, or all",
	}, at.ListPromises)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "complete_promise",
		Description: "Mark a promise kept (terminal; completing twice is a no-op)",
	}, at.CompletePromise)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_promise",
		Description: "Delete a promise",
	}, at.DeletePromise)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "today_view",
		Description: "Overdue, due-today, and upcoming follow-ups, capped nudges, overdue promises, and the timeline",
	}, at.TodayView)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "export_calendar",
		Description: "Export pending follow-ups and upcoming events as an iCalendar file",
	}, at.ExportCalendar)

	// Triage
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "start_triage",
		Description: "Start a triage session over the next batch of inbox captures",
	}, tt.StartTriage)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "triage_status",
		Description: "Show the capture under triage and how many remain",
	}, tt.TriageStatus)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "triage_to_meet",
		Description: "Convert the current capture into a person and a meet",
	}, tt.TriageToMeet)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "triage_to_promise",
		Description: "Convert the current capture into a promise to an existing person",
	}, tt.TriageToPromise)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "triage_attach",
		Description: "Append the current capture to a person's notes",
	}, tt.TriageAttach)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "triage_archive",
		Description: "Dismiss the current capture and move on",
	}, tt.TriageArchive)

	// Data and settings
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "export_json",
		Description: "Export the full database as a versioned JSON snapshot",
	}, dt.ExportJSON)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "import_json",
		Description: "Merge a JSON snapshot into the database with duplicate detection",
	}, dt.ImportJSON)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "export_csv",
		Description: "Export one table as CSV",
	}, dt.ExportCSV)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "import_people_csv",
		Description: "Import people from a CSV with automatic column detection",
	}, dt.ImportPeopleCSV)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_settings",
		Description: "Get the current settings",
	}, dt.GetSettings)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_settings",
		Description: "Update settings; only provided fields change",
	}, dt.UpdateSettings)

	return srv, feed
}
