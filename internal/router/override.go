package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var errNotNotice = errors.New("quoted message is not a join request notice")

// ParseNotice recovers the nickname and request handle from a quoted
// pre-notification. This is a formatting convenience around the platform
// resolution call: the handle it yields is what actually identifies the
// request.
func ParseNotice(text string) (nickname, handle string, err error) {
	if !strings.Contains(text, noticeMarker) {
		return "", "", errNotNotice
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 4 {
		return "", "", errNotNotice
	}

	nickname = lineValue(lines[1])
	handle = lineValue(lines[3])
	if handle == "" {
		return "", "", errNotNotice
	}
	return nickname, handle, nil
}

func lineValue(line string) string {
	_, value, ok := strings.Cut(line, ":")
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// resolveOverride approves or rejects a previously-surfaced join request by
// parsing the quoted notice. All failure modes come back as user-visible
// messages, never a crash.
func (r *Router) resolveOverride(ctx context.Context, quoted string, approve bool, extra string) string {
	if quoted == "" {
		return "no quoted join request notice"
	}

	nickname, handle, err := ParseNotice(quoted)
	if err != nil {
		return err.Error()
	}

	if err := r.client.ResolveJoinRequest(ctx, handle, approve, extra); err != nil {
		return "this request was already handled or the notice is malformed"
	}

	if approve {
		return fmt.Sprintf("approved %s's join request", nickname)
	}
	reply := fmt.Sprintf("rejected %s's join request", nickname)
	if extra != "" {
		reply += "\nreason: " + extra
	}
	return reply
}
