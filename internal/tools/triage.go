package tools

import (
	"context"
	"errors"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/pocketnetwork/internal/models"
	"github.com/wagnerlima/pocketnetwork/internal/storage"
	"github.com/wagnerlima/pocketnetwork/internal/triage"
)

// TriageTools holds the store and the in-flight triage session, if any.
// One session exists at a time; starting a new one replaces it, which
// is safe because untouched dumps simply stay in the inbox.
type TriageTools struct {
	Store *storage.Store

	mu      sync.Mutex
	session *triage.Session
}

// --- Input types ---

type TriageMeetInput struct {
	Name    string `json:"name" jsonschema:"Name of the person you met (required)"`
	Context string `json:"context,omitempty" jsonschema:"What it was about; text dumps pre-fill from their content"`
}

type TriagePromiseInput struct {
	PersonID    int64  `json:"person_id" jsonschema:"Existing person the promise was made to (required)"`
	Description string `json:"description" jsonschema:"What was promised (required)"`
	Verb        string `json:"verb,omitempty" jsonschema:"Kind of promise: intro, send_link, connect, or other"`
	DueDate     string `json:"due_date,omitempty" jsonschema:"Optional due date"`
}

type TriageAttachInput struct {
	PersonID int64 `json:"person_id" jsonschema:"Person whose notes receive the dump content (required)"`
}

// triageState is what every triage tool returns: the item under review
// and how much of the batch is left.
type triageState struct {
	Current   *models.InboxDump `json:"current,omitempty"`
	Remaining int               `json:"remaining"`
	Unsorted  int               `json:"unsorted"`
	Done      bool              `json:"done"`
}

// --- Handlers ---

func (t *TriageTools) state(s *triage.Session) (*mcp.CallToolResult, any, error) {
	st := triageState{Remaining: s.Remaining()}
	if cur, ok := s.Current(); ok {
		st.Current = &cur
	} else {
		st.Done = true
	}
	unsorted, err := t.Store.CountDumps(models.DumpNew)
	if err != nil {
		return toolError("Failed to count inbox: %v", err), nil, nil
	}
	st.Unsorted = unsorted
	return toolJSON(st)
}

func (t *TriageTools) current() (*triage.Session, *mcp.CallToolResult) {
	if t.session == nil {
		return nil, toolError("No triage session in progress. Use start_triage first.")
	}
	return t.session, nil
}

func (t *TriageTools) StartTriage(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := triage.Start(t.Store)
	if err != nil {
		return toolError("Failed to start triage: %v", err), nil, nil
	}
	t.session = s
	return t.state(s)
}

func (t *TriageTools) TriageStatus(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, errResult := t.current()
	if errResult != nil {
		return errResult, nil, nil
	}
	return t.state(s)
}

func (t *TriageTools) TriageToMeet(_ context.Context, _ *mcp.CallToolRequest, input TriageMeetInput) (*mcp.CallToolResult, any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, errResult := t.current()
	if errResult != nil {
		return errResult, nil, nil
	}

	meet, err := s.ConvertToMeet(triage.MeetInput{Name: input.Name, Context: input.Context})
	if err != nil {
		if errors.Is(err, triage.ErrBatchDone) {
			return toolError("Batch complete. Use start_triage for the next batch."), nil, nil
		}
		return toolError("Failed to convert dump: %v", err), nil, nil
	}
	return toolJSON(meet)
}

func (t *TriageTools) TriageToPromise(_ context.Context, _ *mcp.CallToolRequest, input TriagePromiseInput) (*mcp.CallToolResult, any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, errResult := t.current()
	if errResult != nil {
		return errResult, nil, nil
	}

	due, err := parseWhen(input.DueDate)
	if err != nil {
		return toolError("%v", err), nil, nil
	}
	promise, err := s.ConvertToPromise(triage.PromiseInput{
		PersonID:    input.PersonID,
		Description: input.Description,
		Verb:        models.PromiseVerb(input.Verb),
		DueDate:     due,
	})
	if err != nil {
		if errors.Is(err, triage.ErrBatchDone) {
			return toolError("Batch complete. Use start_triage for the next batch."), nil, nil
		}
		return toolError("Failed to convert dump: %v", err), nil, nil
	}
	return toolJSON(promise)
}

func (t *TriageTools) TriageAttach(_ context.Context, _ *mcp.CallToolRequest, input TriageAttachInput) (*mcp.CallToolResult, any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, errResult := t.current()
	if errResult != nil {
		return errResult, nil, nil
	}

	person, err := s.AttachToPerson(input.PersonID)
	if err != nil {
		if errors.Is(err, triage.ErrBatchDone) {
			return toolError("Batch complete. Use start_triage for the next batch."), nil, nil
		}
		return toolError("Failed to attach dump: %v", err), nil, nil
	}
	return toolJSON(person)
}

func (t *TriageTools) TriageArchive(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, errResult := t.current()
	if errResult != nil {
		return errResult, nil, nil
	}

	if err := s.Archive(); err != nil {
		if errors.Is(err, triage.ErrBatchDone) {
			return toolError("Batch complete. Use start_triage for the next batch."), nil, nil
		}
		return toolError("Failed to archive dump: %v", err), nil, nil
	}
	return t.state(s)
}
