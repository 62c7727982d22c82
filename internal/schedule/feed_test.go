package schedule

import (
	"os"
	"testing"
	"time"

	"github.com/wagnerlima/pocketnetwork/internal/config"
	"github.com/wagnerlima/pocketnetwork/internal/models"
	"github.com/wagnerlima/pocketnetwork/internal/storage"
)

func setupFeed(t *testing.T) (*storage.Store, *Feed) {
	t.Helper()
	dir, err := os.MkdirTemp("", "pocketnetwork-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	st, err := storage.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	feed := NewFeed(st, func() config.NudgeIntensity { return config.IntensityMedium })
	t.Cleanup(feed.Close)
	return st, feed
}

func TestFeedRecomputesOnChange(t *testing.T) {
	st, feed := setupFeed(t)
	now := time.Now()

	p, err := st.CreatePerson(models.Person{Name: "Ana"})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if _, err := st.CreateFollowUp(models.FollowUp{PersonID: p.ID, Description: "ping", DueDate: now}); err != nil {
		t.Fatalf("CreateFollowUp: %v", err)
	}

	v, err := feed.View(now)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(v.DueToday) != 1 {
		t.Fatalf("DueToday = %d, want 1", len(v.DueToday))
	}

	// A write invalidates the cache; the next read sees the new row.
	if _, err := st.CreateFollowUp(models.FollowUp{PersonID: p.ID, Description: "again", DueDate: now}); err != nil {
		t.Fatalf("CreateFollowUp: %v", err)
	}
	v, err = feed.View(now)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(v.DueToday) != 2 {
		t.Errorf("DueToday after write = %d, want 2", len(v.DueToday))
	}

	// Person writes do not touch the schedule tables; the cache holds.
	if _, err := st.CreatePerson(models.Person{Name: "Bruno"}); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	v2, err := feed.View(now)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(v2.DueToday) != 2 {
		t.Errorf("DueToday after unrelated write = %d, want 2", len(v2.DueToday))
	}
}
