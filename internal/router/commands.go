package router

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/joingate/joingate/internal/model"
)

// handleCommand parses an admin rule command. Returns (reply, true) for a
// recognized command; unrecognized text is left alone so normal chat never
// draws a reply.
func (r *Router) handleCommand(ctx context.Context, msg model.GroupMessage) (string, bool) {
	fields := strings.Fields(msg.Text)
	if len(fields) == 0 {
		return "", false
	}
	gid := msg.GroupID
	args := fields[1:]

	switch fields[0] {
	case "joinreview":
		return r.cmdJoinReview(gid, args), true

	case "acceptwords":
		if len(args) > 0 {
			r.rules.SetAcceptKeywords(gid, args)
			return fmt.Sprintf("accept keywords set to: %s", strings.Join(args, " ")), true
		}
		return fmt.Sprintf("accept keywords: %s", joinOrNone(r.rules.Get(gid).AcceptKeywords)), true

	case "rejectwords":
		if len(args) > 0 {
			r.rules.SetRejectKeywords(gid, args)
			return fmt.Sprintf("reject keywords set to: %s", strings.Join(args, " ")), true
		}
		return fmt.Sprintf("reject keywords: %s", joinOrNone(r.rules.Get(gid).RejectKeywords)), true

	case "minlevel":
		return r.cmdMinLevel(gid, args), true

	case "maxattempts":
		return r.cmdMaxAttempts(gid, args), true

	case "blacklist":
		if len(args) > 0 {
			r.rules.SetBlockedUsers(gid, args)
			return fmt.Sprintf("blacklist set to: %s", strings.Join(args, " ")), true
		}
		return fmt.Sprintf("blacklist: %s", joinOrNone(r.rules.Get(gid).BlockedUsers)), true

	case "approve":
		return r.resolveOverride(ctx, msg.Quoted, true, strings.Join(args, " ")), true

	case "reject":
		return r.resolveOverride(ctx, msg.Quoted, false, strings.Join(args, " ")), true
	}

	return "", false
}

func (r *Router) cmdJoinReview(gid string, args []string) string {
	if len(args) == 0 || args[0] == "status" {
		if r.rules.Get(gid).Enabled {
			return "join review for this group: on"
		}
		return "join review for this group: off"
	}
	switch mode := parseMode(args[0]); {
	case mode == nil:
		return "usage: joinreview [on|off|status]"
	case *mode:
		r.rules.SetEnabled(gid, true)
		return "join review enabled for this group"
	default:
		r.rules.SetEnabled(gid, false)
		return "join review disabled for this group"
	}
}

func (r *Router) cmdMinLevel(gid string, args []string) string {
	if len(args) == 0 {
		return fmt.Sprintf("minimum level for this group: %d", r.rules.Get(gid).MinLevel)
	}
	level, err := strconv.Atoi(args[0])
	if err != nil || level < 0 {
		return "usage: minlevel <non-negative number>"
	}
	r.rules.SetMinLevel(gid, level)
	if level == 0 {
		return "level threshold removed"
	}
	return fmt.Sprintf("minimum level set to %d", level)
}

func (r *Router) cmdMaxAttempts(gid string, args []string) string {
	if len(args) == 0 {
		return fmt.Sprintf("attempt limit for this group: %d", r.rules.Get(gid).MaxAttempts)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return "usage: maxattempts <non-negative number>"
	}
	r.rules.SetMaxAttempts(gid, n)
	if n == 0 {
		return "attempt limit removed"
	}
	return fmt.Sprintf("attempt limit set to %d", n)
}

// parseMode maps a switch argument to on/off; nil means unrecognized.
func parseMode(s string) *bool {
	var v bool
	switch strings.ToLower(s) {
	case "on", "true", "1", "enable":
		v = true
	case "off", "false", "0", "disable":
		v = false
	default:
		return nil
	}
	return &v
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, " ")
}
