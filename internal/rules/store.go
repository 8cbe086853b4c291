package rules

import (
	"fmt"
	"os"
	"sync"
)

// Store owns the per-group admission configuration and its persistence
// lifecycle. Mutations are write-through: the whole mapping is persisted
// before the mutator returns. A failed save is reported on stderr and the
// in-memory update survives; reads never persist.
type Store struct {
	mu       sync.Mutex
	cfgs     map[string]GroupConfig
	persist  Persister
	defaults Defaults
}

// NewStore loads the mapping from the persister. A load failure is logged
// and the store starts from an empty mapping rather than failing startup.
func NewStore(p Persister, defaults Defaults) *Store {
	cfgs, err := p.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rules: load failed, starting empty: %v\n", err)
		cfgs = map[string]GroupConfig{}
	}
	if cfgs == nil {
		cfgs = map[string]GroupConfig{}
	}
	return &Store{
		cfgs:     cfgs,
		persist:  p,
		defaults: defaults,
	}
}

// Get returns the stored config for the group, or a default-populated one
// when the group has never been configured. The result is a copy.
func (s *Store) Get(groupID string) GroupConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg, ok := s.cfgs[groupID]; ok {
		return cfg.Clone()
	}
	return s.defaults.NewConfig()
}

// EnsureGroup materializes and persists a default config for the group if
// none is stored. Idempotent.
func (s *Store) EnsureGroup(groupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cfgs[groupID]; ok {
		return
	}
	s.cfgs[groupID] = s.defaults.NewConfig()
	s.saveLocked()
}

// Remove deletes the group's config entirely.
func (s *Store) Remove(groupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cfgs, groupID)
	s.saveLocked()
}

// SetEnabled overwrites the group's master switch.
func (s *Store) SetEnabled(groupID string, on bool) {
	s.update(groupID, func(c *GroupConfig) { c.Enabled = on })
}

// SetAcceptKeywords overwrites the group's accept-keyword list.
func (s *Store) SetAcceptKeywords(groupID string, kws []string) {
	kws = append([]string{}, kws...)
	s.update(groupID, func(c *GroupConfig) { c.AcceptKeywords = kws })
}

// SetRejectKeywords overwrites the group's reject-keyword list.
func (s *Store) SetRejectKeywords(groupID string, kws []string) {
	kws = append([]string{}, kws...)
	s.update(groupID, func(c *GroupConfig) { c.RejectKeywords = kws })
}

// SetMinLevel overwrites the group's level threshold. 0 disables it.
func (s *Store) SetMinLevel(groupID string, level int) {
	s.update(groupID, func(c *GroupConfig) { c.MinLevel = level })
}

// SetMaxAttempts overwrites the group's attempt cap. 0 means unlimited.
func (s *Store) SetMaxAttempts(groupID string, n int) {
	s.update(groupID, func(c *GroupConfig) { c.MaxAttempts = n })
}

// SetBlockedUsers overwrites the group's deny-list.
func (s *Store) SetBlockedUsers(groupID string, ids []string) {
	ids = append([]string{}, ids...)
	s.update(groupID, func(c *GroupConfig) { c.BlockedUsers = ids })
}

// AddBlockedUser inserts the user into the group's deny-list with union
// semantics. Returns false if the user was already present (no write).
func (s *Store) AddBlockedUser(groupID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.ensureLocked(groupID)
	if cfg.IsBlocked(userID) {
		return false
	}
	cfg.BlockedUsers = append(cfg.BlockedUsers, userID)
	s.cfgs[groupID] = cfg
	s.saveLocked()
	return true
}

// RemoveBlockedUser removes the user from the group's deny-list. Returns
// false if the user was not present.
func (s *Store) RemoveBlockedUser(groupID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.ensureLocked(groupID)
	kept := cfg.BlockedUsers[:0]
	found := false
	for _, id := range cfg.BlockedUsers {
		if id == userID {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	if !found {
		return false
	}
	cfg.BlockedUsers = kept
	s.cfgs[groupID] = cfg
	s.saveLocked()
	return true
}

// Groups returns the IDs of all groups with stored config.
func (s *Store) Groups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.cfgs))
	for id := range s.cfgs {
		out = append(out, id)
	}
	return out
}

func (s *Store) update(groupID string, mutate func(*GroupConfig)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.ensureLocked(groupID)
	mutate(&cfg)
	s.cfgs[groupID] = cfg
	s.saveLocked()
}

func (s *Store) ensureLocked(groupID string) GroupConfig {
	cfg, ok := s.cfgs[groupID]
	if !ok {
		cfg = s.defaults.NewConfig()
		s.cfgs[groupID] = cfg
	}
	return cfg
}

func (s *Store) saveLocked() {
	if err := s.persist.Save(s.cfgs); err != nil {
		fmt.Fprintf(os.Stderr, "rules: save failed: %v\n", err)
	}
}
