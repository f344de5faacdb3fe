package index

import (
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
)

// ProfileIndex keeps the last known profiles and default mode in memory.
// Restores fall back to it when Redis is unavailable.
type ProfileIndex struct {
	mu          sync.RWMutex
	profiles    map[string]*domain.BrowserProfile // ID -> profile
	defaultMode domain.BrowserMode
	lastSync    time.Time
	detected    map[domain.Browser]bool
	lastDetect  time.Time
}

// NewProfileIndex creates an empty index.
func NewProfileIndex() *ProfileIndex {
	return &ProfileIndex{
		profiles:    make(map[string]*domain.BrowserProfile),
		defaultMode: domain.DefaultBrowserMode,
		detected:    make(map[domain.Browser]bool),
	}
}

// Update replaces the snapshot.
func (idx *ProfileIndex) Update(profiles []*domain.BrowserProfile, defaultMode domain.BrowserMode, at time.Time) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.profiles = make(map[string]*domain.BrowserProfile, len(profiles))
	for _, p := range profiles {
		if p == nil {
			continue
		}
		cp := *p
		idx.profiles[p.ID] = &cp
	}
	if defaultMode.Valid() {
		idx.defaultMode = defaultMode
	}
	idx.lastSync = at
}

// Put adds or replaces one profile.
func (idx *ProfileIndex) Put(p *domain.BrowserProfile) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	cp := *p
	idx.profiles[p.ID] = &cp
}

// Delete removes one profile.
func (idx *ProfileIndex) Delete(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.profiles, id)
}

// SetDefaultMode records a new default mode. Invalid modes are ignored.
func (idx *ProfileIndex) SetDefaultMode(mode domain.BrowserMode) {
	if !mode.Valid() {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.defaultMode = mode
}

// Snapshot returns a copy of the profiles keyed by ID and the default mode,
// ready for domain.Resolve.
func (idx *ProfileIndex) Snapshot() (map[string]domain.BrowserProfile, domain.BrowserMode) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make(map[string]domain.BrowserProfile, len(idx.profiles))
	for id, p := range idx.profiles {
		out[id] = *p
	}
	return out, idx.defaultMode
}

// Profiles returns copies of all profiles, ordered by ID.
func (idx *ProfileIndex) Profiles() []*domain.BrowserProfile {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]*domain.BrowserProfile, 0, len(idx.profiles))
	for _, p := range idx.profiles {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of profiles in the index.
func (idx *ProfileIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.profiles)
}

// LastSync returns when the snapshot was last replaced. Zero means never.
func (idx *ProfileIndex) LastSync() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastSync
}

// SetDetected records the outcome of a detection pass.
func (idx *ProfileIndex) SetDetected(results map[domain.Browser]bool, at time.Time) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.detected = make(map[domain.Browser]bool, len(results))
	for b, ok := range results {
		idx.detected[b] = ok
	}
	idx.lastDetect = at
}

// Detected returns the last detection outcome and when it ran.
func (idx *ProfileIndex) Detected() (map[domain.Browser]bool, time.Time) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make(map[domain.Browser]bool, len(idx.detected))
	for b, ok := range idx.detected {
		out[b] = ok
	}
	return out, idx.lastDetect
}
