// Package schedule derives the "what needs attention right now" views:
// due/overdue/today buckets, the capped nudge list, and the combined
// timeline. Everything here is a pure function of store snapshots and
// the current instant; no derived state is persisted.
package schedule

import (
	"sort"
	"time"

	"github.com/wagnerlima/pocketnetwork/internal/config"
	"github.com/wagnerlima/pocketnetwork/internal/models"
)

// Bucket partitions a due date relative to "now".
type Bucket int

const (
	BucketOverdue Bucket = iota
	BucketDueToday
	BucketUpcoming
)

// BucketFor places a due date in exactly one bucket: overdue when it is
// strictly before the start of today, dueToday when it falls on today's
// calendar date regardless of time-of-day, upcoming otherwise.
func BucketFor(due, now time.Time) Bucket {
	start := startOfDay(now)
	if due.Before(start) {
		return BucketOverdue
	}
	if sameDay(due, now) {
		return BucketDueToday
	}
	return BucketUpcoming
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ItemKind tags a timeline entry.
type ItemKind string

const (
	ItemFollowUp ItemKind = "followUp"
	ItemPromise  ItemKind = "promise"
	ItemEvent    ItemKind = "event"
)

// Item is one timeline entry; exactly one of the record fields is set
// according to Kind.
type Item struct {
	Kind     ItemKind         `json:"kind"`
	At       time.Time        `json:"at"`
	FollowUp *models.FollowUp `json:"followUp,omitempty"`
	Promise  *models.Promise  `json:"promise,omitempty"`
	Event    *models.Event    `json:"event,omitempty"`
}

// Day groups timeline items sharing a calendar date.
type Day struct {
	Date  time.Time `json:"date"`
	Items []Item    `json:"items"`
}

// View is the computed attention surface.
type View struct {
	Overdue  []models.FollowUp `json:"overdue"`
	DueToday []models.FollowUp `json:"dueToday"`
	Upcoming []models.FollowUp `json:"upcoming"`

	// Nudges is the capped overdue+dueToday subset actually surfaced.
	Nudges []models.FollowUp `json:"nudges"`

	// OverduePromises lists incomplete promises whose due date has
	// passed; promises are never nudge-capped.
	OverduePromises []models.Promise `json:"overduePromises"`

	Timeline []Day `json:"timeline"`
}

// visible reports whether a follow-up participates in scheduling: a
// snoozedUntil in the future suppresses it without moving its due date.
func visible(f models.FollowUp, now time.Time) bool {
	if f.Completed {
		return false
	}
	if f.SnoozedUntil != nil && now.Before(*f.SnoozedUntil) {
		return false
	}
	return true
}

// Compute partitions the given records against now. followUps and
// promises may include completed records; they are skipped.
func Compute(followUps []models.FollowUp, promises []models.Promise, events []models.Event, now time.Time, intensity config.NudgeIntensity) View {
	var v View

	for _, f := range followUps {
		if !visible(f, now) {
			continue
		}
		switch BucketFor(f.DueDate, now) {
		case BucketOverdue:
			v.Overdue = append(v.Overdue, f)
		case BucketDueToday:
			v.DueToday = append(v.DueToday, f)
		default:
			v.Upcoming = append(v.Upcoming, f)
		}
	}
	byDue := func(list []models.FollowUp) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].DueDate.Before(list[j].DueDate) })
	}
	byDue(v.Overdue)
	byDue(v.DueToday)
	byDue(v.Upcoming)

	// Overdue before due-today, truncated to the intensity cap.
	nudges := make([]models.FollowUp, 0, len(v.Overdue)+len(v.DueToday))
	nudges = append(nudges, v.Overdue...)
	nudges = append(nudges, v.DueToday...)
	max := config.Settings{NudgeIntensity: intensity}.MaxNudges()
	if len(nudges) > max {
		nudges = nudges[:max]
	}
	v.Nudges = nudges

	for _, p := range promises {
		if p.Completed || p.DueDate == nil {
			continue
		}
		if BucketFor(*p.DueDate, now) == BucketOverdue {
			v.OverduePromises = append(v.OverduePromises, p)
		}
	}
	sort.SliceStable(v.OverduePromises, func(i, j int) bool {
		return v.OverduePromises[i].DueDate.Before(*v.OverduePromises[j].DueDate)
	})

	v.Timeline = timeline(v.DueToday, v.Upcoming, promises, events, now)
	return v
}

// timeline merges today-or-future follow-ups, dated promises, and
// events into one chronological sequence grouped by calendar date.
func timeline(dueToday, upcoming []models.FollowUp, promises []models.Promise, events []models.Event, now time.Time) []Day {
	start := startOfDay(now)
	var items []Item

	for i := range dueToday {
		items = append(items, Item{Kind: ItemFollowUp, At: dueToday[i].DueDate, FollowUp: &dueToday[i]})
	}
	for i := range upcoming {
		items = append(items, Item{Kind: ItemFollowUp, At: upcoming[i].DueDate, FollowUp: &upcoming[i]})
	}
	for i := range promises {
		p := promises[i]
		if p.Completed || p.DueDate == nil || p.DueDate.Before(start) {
			continue
		}
		items = append(items, Item{Kind: ItemPromise, At: *p.DueDate, Promise: &promises[i]})
	}
	for i := range events {
		if events[i].Date.Before(start) {
			continue
		}
		items = append(items, Item{Kind: ItemEvent, At: events[i].Date, Event: &events[i]})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].At.Before(items[j].At) })

	var days []Day
	for _, it := range items {
		date := startOfDay(it.At)
		if len(days) == 0 || !days[len(days)-1].Date.Equal(date) {
			days = append(days, Day{Date: date})
		}
		days[len(days)-1].Items = append(days[len(days)-1].Items, it)
	}
	return days
}
