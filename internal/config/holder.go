package config

import "sync"

// Holder is the shared, mutable view of the settings record. Readers
// get a copy; updates persist to disk before becoming visible.
type Holder struct {
	path string

	mu sync.RWMutex
	s  Settings
}

// NewHolder loads settings from path and wraps them.
func NewHolder(path string) (*Holder, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Holder{path: path, s: s}, nil
}

// Get returns the current settings.
func (h *Holder) Get() Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.s
}

// Set normalizes, persists, and publishes new settings. The in-memory
// record only changes if the write succeeds.
func (h *Holder) Set(s Settings) (Settings, error) {
	s = s.normalize()
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := Save(h.path, s); err != nil {
		return Settings{}, err
	}
	h.s = s
	return s, nil
}
