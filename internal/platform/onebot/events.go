package onebot

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// frame is the superset of everything the gateway can push: events and
// API responses share one socket. A non-null echo marks an API response.
type frame struct {
	Echo    json.RawMessage `json:"echo,omitempty"`
	Status  string          `json:"status,omitempty"`
	Retcode int             `json:"retcode,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`

	PostType      string `json:"post_type,omitempty"`
	MetaEventType string `json:"meta_event_type,omitempty"`

	RequestType string `json:"request_type,omitempty"`
	SubType     string `json:"sub_type,omitempty"`
	Flag        string `json:"flag,omitempty"`
	Comment     string `json:"comment,omitempty"`

	NoticeType string `json:"notice_type,omitempty"`

	MessageType string          `json:"message_type,omitempty"`
	Message     json.RawMessage `json:"message,omitempty"`
	RawMessage  string          `json:"raw_message,omitempty"`

	GroupID int64 `json:"group_id,omitempty"`
	UserID  int64 `json:"user_id,omitempty"`
	SelfID  int64 `json:"self_id,omitempty"`
}

func (f *frame) isResponse() bool {
	return len(f.Echo) > 0 && string(f.Echo) != "null"
}

// segment is one element of an array-format message.
type segment struct {
	Type string `json:"type"`
	Data struct {
		Text string `json:"text"`
		ID   string `json:"id"`
	} `json:"data"`
}

// messageText flattens an array-format message to its text content. The
// gateway may also deliver the message as a plain JSON string.
func messageText(raw json.RawMessage, fallback string) string {
	var segs []segment
	if err := json.Unmarshal(raw, &segs); err == nil {
		var b strings.Builder
		for _, s := range segs {
			if s.Type == "text" {
				b.WriteString(s.Data.Text)
			}
		}
		return strings.TrimSpace(b.String())
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fallback)
}

// replyID extracts the quoted message id from a reply segment, or "".
func replyID(raw json.RawMessage) string {
	var segs []segment
	if err := json.Unmarshal(raw, &segs); err != nil {
		return ""
	}
	for _, s := range segs {
		if s.Type == "reply" {
			return s.Data.ID
		}
	}
	return ""
}

// looseInt decodes a JSON number or a quoted number. Gateway
// implementations disagree on whether profile levels are strings.
type looseInt int

func (l *looseInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*l = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not an integer: %q", s)
	}
	*l = looseInt(n)
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return n, nil
}
