package schedule

import (
	"sync"
	"time"

	"github.com/wagnerlima/pocketnetwork/internal/config"
	"github.com/wagnerlima/pocketnetwork/internal/storage"
)

// Feed is the live counterpart of Compute: it caches the current view
// and invalidates it on store change notifications, so repeated reads
// between mutations cost nothing. Recomputation also happens when the
// calendar date rolls over, since bucketing depends on "today".
type Feed struct {
	store     *storage.Store
	intensity func() config.NudgeIntensity

	mu         sync.Mutex
	cached     *View
	computedAt time.Time

	cancel func()
}

// NewFeed subscribes to the store. intensity is read on every
// recomputation so settings changes take effect without a restart.
func NewFeed(store *storage.Store, intensity func() config.NudgeIntensity) *Feed {
	f := &Feed{store: store, intensity: intensity}
	f.cancel = store.Watch(func(t storage.Table) {
		switch t {
		case storage.TableFollowUps, storage.TablePromises, storage.TableEvents:
			f.invalidate()
		}
	})
	return f
}

// Close cancels the store subscription.
func (f *Feed) Close() {
	if f.cancel != nil {
		f.cancel()
	}
}

func (f *Feed) invalidate() {
	f.mu.Lock()
	f.cached = nil
	f.mu.Unlock()
}

// View returns the current attention view, recomputing only when the
// underlying tables changed or the day rolled over.
func (f *Feed) View(now time.Time) (View, error) {
	f.mu.Lock()
	if f.cached != nil && sameDay(f.computedAt, now) {
		v := *f.cached
		f.mu.Unlock()
		return v, nil
	}
	f.mu.Unlock()

	followUps, err := f.store.PendingFollowUps()
	if err != nil {
		return View{}, err
	}
	promises, err := f.store.PendingPromises()
	if err != nil {
		return View{}, err
	}
	events, err := f.store.UpcomingEvents(startOfDay(now))
	if err != nil {
		return View{}, err
	}

	v := Compute(followUps, promises, events, now, f.intensity())

	f.mu.Lock()
	f.cached = &v
	f.computedAt = now
	f.mu.Unlock()
	return v, nil
}
