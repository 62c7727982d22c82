package models

import "time"

// NextStepType classifies the follow-up action a meet calls for.
type NextStepType string

const (
	NextStepMessage  NextStepType = "message"
	NextStepIntro    NextStepType = "intro"
	NextStepSendLink NextStepType = "send_link"
	NextStepCoffee   NextStepType = "coffee"
	NextStepNone     NextStepType = "none"
)

// NextStepDescription returns the default follow-up description for a
// next-step type, or "" for NextStepNone.
func NextStepDescription(t NextStepType) string {
	switch t {
	case NextStepMessage:
		return "Send them a message"
	case NextStepIntro:
		return "Make an introduction"
	case NextStepSendLink:
		return "Send them a link"
	case NextStepCoffee:
		return "Schedule a coffee chat"
	}
	return ""
}

// Priority of a follow-up.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Energy records how a meet felt.
type Energy string

const (
	EnergyCalm    Energy = "calm"
	EnergyOK      Energy = "ok"
	EnergyChaotic Energy = "chaotic"
)

// DraftTone selects the voice of a drafted follow-up message.
type DraftTone string

const (
	ToneWarm   DraftTone = "warm"
	ToneDirect DraftTone = "direct"
)

// PromiseVerb is the categorical kind of a promise.
type PromiseVerb string

const (
	VerbIntro    PromiseVerb = "intro"
	VerbSendLink PromiseVerb = "send_link"
	VerbConnect  PromiseVerb = "connect"
	VerbOther    PromiseVerb = "other"
)

// TaskStatus mirrors the completed flag on follow-ups and promises.
type TaskStatus string

const (
	StatusPending TaskStatus = "pending"
	StatusDone    TaskStatus = "done"
)

// DumpType is the capture medium of an inbox dump.
type DumpType string

const (
	DumpText  DumpType = "text"
	DumpPhoto DumpType = "photo"
	DumpAudio DumpType = "audio"
)

// DumpStatus is the triage state of an inbox dump. It advances
// new -> triaged or new -> archived; archived can be restored to new.
type DumpStatus string

const (
	DumpNew      DumpStatus = "new"
	DumpTriaged  DumpStatus = "triaged"
	DumpArchived DumpStatus = "archived"
)

// FollowUpTiming is the default delay applied to auto-created follow-ups.
type FollowUpTiming string

const (
	Timing24h FollowUpTiming = "24h"
	Timing3d  FollowUpTiming = "3d"
	Timing7d  FollowUpTiming = "7d"
)

// OffsetDays returns the number of days a timing pushes a due date out.
// Unknown values fall back to the 3-day default.
func (t FollowUpTiming) OffsetDays() int {
	switch t {
	case Timing24h:
		return 1
	case Timing7d:
		return 7
	}
	return 3
}

// Person is a remembered contact and the aggregation root for meets,
// follow-ups, and promises. Deleting a person removes all of them.
type Person struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Pronouns      string    `json:"pronouns,omitempty"`
	Company       string    `json:"company,omitempty"`
	Role          string    `json:"role,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	PhotoURL      string    `json:"photoUrl,omitempty"`
	LinkedInURL   string    `json:"linkedInUrl,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	NeedsRefining bool      `json:"needsRefining,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Event is a place or occasion where meets happen. Deleting an event
// unlinks its meets instead of deleting them.
type Event struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Location  string    `json:"location,omitempty"`
	Series    string    `json:"series,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Meet is one recorded interaction. PersonID is optional so a hasty
// draft can be captured before the person record exists.
type Meet struct {
	ID            int64        `json:"id"`
	PersonID      *int64       `json:"personId,omitempty"`
	EventID       *int64       `json:"eventId,omitempty"`
	When          time.Time    `json:"when"`
	Where         string       `json:"where,omitempty"`
	Context       string       `json:"context,omitempty"`
	NextStep      string       `json:"nextStep,omitempty"`
	NextStepType  NextStepType `json:"nextStepType,omitempty"`
	Topics        []string     `json:"topics,omitempty"`
	Energy        Energy       `json:"energy,omitempty"`
	VoiceNoteURL  string       `json:"voiceNoteUrl,omitempty"`
	IsDraft       bool         `json:"isDraft,omitempty"`
	NeedsRefining bool         `json:"needsRefining,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// FollowUp is an actionable commitment owed toward a person. Completed
// is a terminal transition; completedAt is set exactly once.
type FollowUp struct {
	ID           int64      `json:"id"`
	MeetID       *int64     `json:"meetId,omitempty"`
	PersonID     int64      `json:"personId"`
	Description  string     `json:"description,omitempty"`
	DueDate      time.Time  `json:"dueDate"`
	Status       TaskStatus `json:"status"`
	Priority     Priority   `json:"priority"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	SnoozedUntil *time.Time `json:"snoozedUntil,omitempty"`
	SnoozedCount int        `json:"snoozedCount,omitempty"`
	DraftTone    DraftTone  `json:"draftTone,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Promise is a self-made commitment to a person, tracked separately
// from the follow-up queue.
type Promise struct {
	ID          int64       `json:"id"`
	PersonID    int64       `json:"personId"`
	MeetID      *int64      `json:"meetId,omitempty"`
	Verb        PromiseVerb `json:"verb,omitempty"`
	Description string      `json:"description"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
	Status      TaskStatus  `json:"status"`
	Completed   bool        `json:"completed"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// InboxDump is an unstructured capture awaiting triage. Processed is
// true whenever status has left "new".
type InboxDump struct {
	ID          int64      `json:"id"`
	Type        DumpType   `json:"type"`
	Content     string     `json:"content,omitempty"`
	BlobURL     string     `json:"blobUrl,omitempty"`
	EventID     *int64     `json:"eventId,omitempty"`
	Status      DumpStatus `json:"status"`
	Processed   bool       `json:"processed"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
