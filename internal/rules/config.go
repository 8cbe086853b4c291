package rules

// GroupConfig holds the admission rules for a single group. JSON field names
// match the persisted layout; the schema version is carried in the store's
// file name, so an incompatible historical layout is never deserialized.
type GroupConfig struct {
	Enabled        bool     `json:"switch"`
	AcceptKeywords []string `json:"accept_keywords"`
	RejectKeywords []string `json:"reject_keywords"`
	MinLevel       int      `json:"min_level"`
	MaxAttempts    int      `json:"max_time"`
	BlockedUsers   []string `json:"block_ids"`
}

// IsBlocked reports whether the user is on the group's deny-list.
func (c GroupConfig) IsBlocked(userID string) bool {
	for _, id := range c.BlockedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Stored configs are handed out by value only,
// so callers can never mutate the store's slices in place.
func (c GroupConfig) Clone() GroupConfig {
	out := c
	out.AcceptKeywords = append([]string(nil), c.AcceptKeywords...)
	out.RejectKeywords = append([]string(nil), c.RejectKeywords...)
	out.BlockedUsers = append([]string(nil), c.BlockedUsers...)
	return out
}

// Defaults are the values a group gets the first time it is materialized.
type Defaults struct {
	Enabled     bool
	MinLevel    int
	MaxAttempts int
}

// NewConfig builds a default-populated config for an unseen group.
func (d Defaults) NewConfig() GroupConfig {
	return GroupConfig{
		Enabled:        d.Enabled,
		AcceptKeywords: []string{},
		RejectKeywords: []string{},
		MinLevel:       d.MinLevel,
		MaxAttempts:    d.MaxAttempts,
		BlockedUsers:   []string{},
	}
}
