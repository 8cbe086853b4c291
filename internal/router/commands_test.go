package router

import (
	"context"
	"strings"
	"testing"

	"github.com/joingate/joingate/internal/model"
)

func adminMsg(text, quoted string) model.GroupMessage {
	return model.GroupMessage{GroupID: "g1", UserID: "a1", Text: text, Quoted: quoted}
}

func newCommandRouter(t *testing.T) (*Router, *fakeClient) {
	t.Helper()
	r, _, client := newTestRouter(t, Config{AdminIDs: []string{"a1"}})
	return r, client
}

func TestNonAdminIgnored(t *testing.T) {
	r, client := newCommandRouter(t)

	r.HandleGroupMessage(context.Background(), model.GroupMessage{
		GroupID: "g1", UserID: "stranger", Text: "joinreview off",
	})

	if len(client.groupMsgs) != 0 {
		t.Errorf("non-admin drew a reply: %v", client.groupMsgs)
	}
	if !r.rules.Get("g1").Enabled {
		t.Error("non-admin toggled the switch")
	}
}

func TestUnrecognizedTextSilent(t *testing.T) {
	r, client := newCommandRouter(t)

	r.HandleGroupMessage(context.Background(), adminMsg("good morning everyone", ""))

	if len(client.groupMsgs) != 0 {
		t.Errorf("plain chat drew a reply: %v", client.groupMsgs)
	}
}

func TestJoinReviewToggle(t *testing.T) {
	r, client := newCommandRouter(t)
	ctx := context.Background()

	r.HandleGroupMessage(ctx, adminMsg("joinreview off", ""))
	if r.rules.Get("g1").Enabled {
		t.Error("switch still on after joinreview off")
	}

	r.HandleGroupMessage(ctx, adminMsg("joinreview", ""))
	last := client.groupMsgs[len(client.groupMsgs)-1]
	if !strings.Contains(last, "off") {
		t.Errorf("status reply = %q", last)
	}

	r.HandleGroupMessage(ctx, adminMsg("joinreview on", ""))
	if !r.rules.Get("g1").Enabled {
		t.Error("switch still off after joinreview on")
	}

	r.HandleGroupMessage(ctx, adminMsg("joinreview sideways", ""))
	last = client.groupMsgs[len(client.groupMsgs)-1]
	if !strings.Contains(last, "usage") {
		t.Errorf("bad mode reply = %q", last)
	}
}

func TestKeywordCommands(t *testing.T) {
	r, client := newCommandRouter(t)
	ctx := context.Background()

	r.HandleGroupMessage(ctx, adminMsg("acceptwords friend student", ""))
	if got := r.rules.Get("g1").AcceptKeywords; len(got) != 2 || got[0] != "friend" {
		t.Errorf("accept keywords = %v", got)
	}

	r.HandleGroupMessage(ctx, adminMsg("rejectwords ad", ""))
	if got := r.rules.Get("g1").RejectKeywords; len(got) != 1 || got[0] != "ad" {
		t.Errorf("reject keywords = %v", got)
	}

	r.HandleGroupMessage(ctx, adminMsg("acceptwords", ""))
	last := client.groupMsgs[len(client.groupMsgs)-1]
	if !strings.Contains(last, "friend student") {
		t.Errorf("query reply = %q", last)
	}
}

func TestKeywordQueryEmpty(t *testing.T) {
	r, client := newCommandRouter(t)

	r.HandleGroupMessage(context.Background(), adminMsg("rejectwords", ""))

	last := client.groupMsgs[len(client.groupMsgs)-1]
	if !strings.Contains(last, "(none)") {
		t.Errorf("empty keyword query reply = %q", last)
	}
}

func TestNumericCommands(t *testing.T) {
	r, client := newCommandRouter(t)
	ctx := context.Background()

	r.HandleGroupMessage(ctx, adminMsg("minlevel 12", ""))
	if got := r.rules.Get("g1").MinLevel; got != 12 {
		t.Errorf("min level = %d", got)
	}

	r.HandleGroupMessage(ctx, adminMsg("minlevel 0", ""))
	last := client.groupMsgs[len(client.groupMsgs)-1]
	if !strings.Contains(last, "removed") {
		t.Errorf("zero threshold reply = %q", last)
	}

	r.HandleGroupMessage(ctx, adminMsg("maxattempts 3", ""))
	if got := r.rules.Get("g1").MaxAttempts; got != 3 {
		t.Errorf("max attempts = %d", got)
	}

	r.HandleGroupMessage(ctx, adminMsg("maxattempts -1", ""))
	last = client.groupMsgs[len(client.groupMsgs)-1]
	if !strings.Contains(last, "usage") {
		t.Errorf("negative cap reply = %q", last)
	}
}

func TestBlacklistCommand(t *testing.T) {
	r, client := newCommandRouter(t)
	ctx := context.Background()

	r.HandleGroupMessage(ctx, adminMsg("blacklist u7 u8", ""))
	cfg := r.rules.Get("g1")
	if !cfg.IsBlocked("u7") || !cfg.IsBlocked("u8") {
		t.Errorf("blacklist = %v", cfg.BlockedUsers)
	}

	r.HandleGroupMessage(ctx, adminMsg("blacklist", ""))
	last := client.groupMsgs[len(client.groupMsgs)-1]
	if !strings.Contains(last, "u7 u8") {
		t.Errorf("blacklist query reply = %q", last)
	}
}
