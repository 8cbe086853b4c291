package audit

// TimestampFormat is the wall-clock format used in audit entries.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Entry is one line in the hash-chained JSONL audit log. All fields are
// scalars (no map[string]any) to guarantee deterministic json.Marshal field
// order for reproducible hashing.
type Entry struct {
	Timestamp string `json:"ts"`
	GroupID   string `json:"group_id"`
	UserID    string `json:"user_id"`
	Decision  string `json:"decision"`
	Reason    string `json:"reason"`
	Rule      string `json:"rule"`
	PrevHash  string `json:"prev_hash"`
}
