// Package export produces and consumes the textual projections of the
// store: the versioned JSON snapshot and its merge-import, per-table
// CSV files, the people CSV importer, and the iCalendar/vCard output
// contracts.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/natefinch/atomic"

	"github.com/wagnerlima/pocketnetwork/internal/config"
	"github.com/wagnerlima/pocketnetwork/internal/models"
	"github.com/wagnerlima/pocketnetwork/internal/reconcile"
	"github.com/wagnerlima/pocketnetwork/internal/storage"
)

// SchemaVersion tags snapshots. Import refuses anything newer; older
// versions are the future migration hook.
const SchemaVersion = 1

// Snapshot is the full-database JSON export shape. Date fields ride as
// ISO-8601 strings on the wire.
type Snapshot struct {
	SchemaVersion int               `json:"schemaVersion"`
	ExportDate    time.Time         `json:"exportDate"`
	Settings      []config.Settings `json:"settings"`
	People        []models.Person   `json:"people"`
	Meets         []models.Meet     `json:"meets"`
	Events        []models.Event    `json:"events"`
	FollowUps     []models.FollowUp `json:"followUps"`
	Promises      []models.Promise  `json:"promises"`
	InboxDumps    []models.InboxDump `json:"inboxDumps"`
}

// JSON serializes the entire store. When includeMedia is false the
// opaque attachment references (photos, voice notes, dump blobs) are
// stripped to keep the snapshot lightweight.
func JSON(st *storage.Store, settings config.Settings, includeMedia bool, now time.Time) ([]byte, error) {
	snap := Snapshot{
		SchemaVersion: SchemaVersion,
		ExportDate:    now,
		Settings:      []config.Settings{settings},
	}

	var err error
	if snap.People, err = st.ListPeople(); err != nil {
		return nil, fmt.Errorf("export people: %w", err)
	}
	if snap.Meets, err = st.ListMeets(); err != nil {
		return nil, fmt.Errorf("export meets: %w", err)
	}
	if snap.Events, err = st.ListEvents(); err != nil {
		return nil, fmt.Errorf("export events: %w", err)
	}
	if snap.FollowUps, err = st.ListFollowUps(); err != nil {
		return nil, fmt.Errorf("export follow-ups: %w", err)
	}
	if snap.Promises, err = st.ListPromises(); err != nil {
		return nil, fmt.Errorf("export promises: %w", err)
	}
	if snap.InboxDumps, err = st.ListDumps(); err != nil {
		return nil, fmt.Errorf("export dumps: %w", err)
	}

	if !includeMedia {
		for i := range snap.People {
			snap.People[i].PhotoURL = ""
		}
		for i := range snap.Meets {
			snap.Meets[i].VoiceNoteURL = ""
		}
		for i := range snap.InboxDumps {
			snap.InboxDumps[i].BlobURL = ""
		}
	}

	return json.MarshalIndent(snap, "", "  ")
}

// WriteSnapshot writes an export atomically so a crash never leaves a
// half-written backup on disk.
func WriteSnapshot(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// TableCounts aggregates one table's import outcome.
type TableCounts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// ImportResult summarizes a merge-import.
type ImportResult struct {
	Created int                    `json:"created"`
	Updated int                    `json:"updated"`
	Errors  int                    `json:"errors"`
	Tables  map[string]TableCounts `json:"tables"`
	Message string                 `json:"message"`

	// Settings carries the snapshot's settings record, if any, so the
	// caller can decide whether to adopt it.
	Settings *config.Settings `json:"settings,omitempty"`
}

// ImportJSON merges a snapshot into the store. Parse and schema-version
// validation are all-or-nothing before any write; row application is
// per-row best effort after that. People go through identity
// reconciliation, every other table merges by id. Person references on
// dependent rows are remapped when reconciliation renumbers a person.
func ImportJSON(st *storage.Store, data []byte) (*ImportResult, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid export file: %w", err)
	}
	if snap.SchemaVersion == 0 {
		return nil, fmt.Errorf("invalid export file: missing schema version")
	}
	if snap.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("export file is schema version %d, newer than supported version %d", snap.SchemaVersion, SchemaVersion)
	}

	res := &ImportResult{Tables: make(map[string]TableCounts)}
	if len(snap.Settings) > 0 {
		s := snap.Settings[0]
		res.Settings = &s
	}

	// People first: everything else hangs off them. Reconciliation may
	// assign a different identity than the snapshot carried, so keep a
	// remap table for dependent rows.
	personIDs := make(map[int64]int64)
	var people TableCounts
	for _, p := range snap.People {
		existing, err := st.ListPeople()
		if err != nil {
			return nil, fmt.Errorf("import people: %w", err)
		}
		if match := reconcile.FindMatch(p, existing); match != nil {
			merged := reconcile.Merge(*match, p)
			if _, err := st.ReplacePerson(match.ID, merged); err != nil {
				people.Errors++
				continue
			}
			if p.ID != 0 {
				personIDs[p.ID] = match.ID
			}
			people.Updated++
		} else {
			stored, err := st.ImportPerson(p)
			if err != nil {
				people.Errors++
				continue
			}
			if p.ID != 0 {
				personIDs[p.ID] = stored.ID
			}
			people.Created++
		}
	}
	res.Tables["people"] = people

	remap := func(id int64) int64 {
		if mapped, ok := personIDs[id]; ok {
			return mapped
		}
		return id
	}
	remapPtr := func(id *int64) *int64 {
		if id == nil {
			return nil
		}
		mapped := remap(*id)
		return &mapped
	}

	var events TableCounts
	for _, e := range snap.Events {
		created, err := st.MergeEvent(e)
		tally(&events, created, err)
	}
	res.Tables["events"] = events

	var meets TableCounts
	for _, m := range snap.Meets {
		m.PersonID = remapPtr(m.PersonID)
		created, err := st.MergeMeet(m)
		tally(&meets, created, err)
	}
	res.Tables["meets"] = meets

	var followUps TableCounts
	for _, f := range snap.FollowUps {
		f.PersonID = remap(f.PersonID)
		created, err := st.MergeFollowUp(f)
		tally(&followUps, created, err)
	}
	res.Tables["followUps"] = followUps

	var promises TableCounts
	for _, p := range snap.Promises {
		p.PersonID = remap(p.PersonID)
		created, err := st.MergePromise(p)
		tally(&promises, created, err)
	}
	res.Tables["promises"] = promises

	var dumps TableCounts
	for _, d := range snap.InboxDumps {
		created, err := st.MergeDump(d)
		tally(&dumps, created, err)
	}
	res.Tables["inboxDumps"] = dumps

	for _, tc := range res.Tables {
		res.Created += tc.Created
		res.Updated += tc.Updated
		res.Errors += tc.Errors
	}
	res.Message = fmt.Sprintf("Import complete: %d created, %d updated", res.Created, res.Updated)
	if res.Errors > 0 {
		res.Message = fmt.Sprintf("Import complete: %d created, %d updated, %d rows failed", res.Created, res.Updated, res.Errors)
	}
	return res, nil
}

func tally(tc *TableCounts, created bool, err error) {
	switch {
	case err != nil:
		tc.Errors++
	case created:
		tc.Created++
	default:
		tc.Updated++
	}
}
