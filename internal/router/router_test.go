package router

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joingate/joingate/internal/alert"
	"github.com/joingate/joingate/internal/attempts"
	"github.com/joingate/joingate/internal/engine"
	"github.com/joingate/joingate/internal/metrics"
	"github.com/joingate/joingate/internal/model"
	"github.com/joingate/joingate/internal/rules"
)

type resolveCall struct {
	Handle  string
	Approve bool
	Reason  string
}

type muteCall struct {
	GroupID  string
	UserID   string
	Duration time.Duration
}

type fakeClient struct {
	mu         sync.Mutex
	groupMsgs  []string
	directMsgs map[string][]string
	resolved   []resolveCall
	mutes      []muteCall
	profiles   map[string]model.Profile

	resolveErr error
	muteErr    error
	profileErr error
	directErr  error
	selfID     string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		directMsgs: map[string][]string{},
		profiles:   map[string]model.Profile{},
	}
}

func (f *fakeClient) ResolveJoinRequest(ctx context.Context, handle string, approve bool, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolveErr != nil {
		return f.resolveErr
	}
	f.resolved = append(f.resolved, resolveCall{handle, approve, reason})
	return nil
}

func (f *fakeClient) SendGroupMessage(ctx context.Context, groupID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groupMsgs = append(f.groupMsgs, text)
	return nil
}

func (f *fakeClient) SendDirectMessage(ctx context.Context, userID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.directErr != nil {
		return f.directErr
	}
	f.directMsgs[userID] = append(f.directMsgs[userID], text)
	return nil
}

func (f *fakeClient) MuteUser(ctx context.Context, groupID, userID string, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.muteErr != nil {
		return f.muteErr
	}
	f.mutes = append(f.mutes, muteCall{groupID, userID, d})
	return nil
}

func (f *fakeClient) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileErr != nil {
		return model.Profile{}, f.profileErr
	}
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return model.Profile{Nickname: "nick-" + userID}, nil
}

func (f *fakeClient) SelfID() string { return f.selfID }

func newTestRouter(t *testing.T, cfg Config) (*Router, *rules.Store, *fakeClient) {
	t.Helper()
	store := rules.NewStore(rules.NewFilePersister(t.TempDir()), rules.Defaults{Enabled: true})
	eng := engine.New(store, attempts.NewTracker())
	client := newFakeClient()
	return New(cfg, store, eng, client), store, client
}

func TestDisabledGroupShortCircuits(t *testing.T) {
	r, store, client := newTestRouter(t, Config{})
	store.SetEnabled("g1", false)
	store.SetMaxAttempts("g1", 1)

	for i := 0; i < 3; i++ {
		r.HandleJoinRequest(context.Background(), model.JoinRequest{GroupID: "g1", UserID: "u1", Handle: "h1"})
	}

	if len(client.resolved) != 0 || len(client.groupMsgs) != 0 {
		t.Error("disabled group produced side effects")
	}
}

func TestJoinRequestApprovedFlow(t *testing.T) {
	r, _, client := newTestRouter(t, Config{})

	r.HandleJoinRequest(context.Background(), model.JoinRequest{
		GroupID: "g1", UserID: "u1", Comment: "hello", Handle: "h1",
	})

	if len(client.resolved) != 1 {
		t.Fatalf("resolve calls = %d, want 1", len(client.resolved))
	}
	got := client.resolved[0]
	if got.Handle != "h1" || !got.Approve || got.Reason != "" {
		t.Errorf("resolve call = %+v", got)
	}

	// Pre-notification first, verdict outcome second.
	if len(client.groupMsgs) != 2 {
		t.Fatalf("group messages = %v", client.groupMsgs)
	}
	if !strings.Contains(client.groupMsgs[0], noticeMarker) {
		t.Errorf("first message is not the pre-notification: %q", client.groupMsgs[0])
	}
	if !strings.Contains(client.groupMsgs[0], "handle: h1") {
		t.Errorf("pre-notification missing handle: %q", client.groupMsgs[0])
	}
	if client.groupMsgs[1] != "auto-approved" {
		t.Errorf("outcome message = %q", client.groupMsgs[1])
	}
}

func TestJoinRequestRejectKeywordBlacklists(t *testing.T) {
	r, store, client := newTestRouter(t, Config{})
	store.SetRejectKeywords("g1", []string{"spam"})

	r.HandleJoinRequest(context.Background(), model.JoinRequest{
		GroupID: "g1", UserID: "u1", Comment: "this is spam content", Handle: "h1",
	})

	if len(client.resolved) != 1 {
		t.Fatalf("resolve calls = %d, want 1", len(client.resolved))
	}
	got := client.resolved[0]
	if got.Approve {
		t.Error("reject-keyword request approved")
	}
	if got.Reason != "matched reject keyword" {
		t.Errorf("reject reason = %q", got.Reason)
	}
	if !store.Get("g1").IsBlocked("u1") {
		t.Error("requester not blacklisted afterwards")
	}
}

func TestJoinRequestLevelFromProfile(t *testing.T) {
	r, store, client := newTestRouter(t, Config{})
	store.SetMinLevel("g1", 10)
	level := 5
	client.profiles["u1"] = model.Profile{Nickname: "low", Level: &level}

	r.HandleJoinRequest(context.Background(), model.JoinRequest{GroupID: "g1", UserID: "u1", Handle: "h1"})

	if len(client.resolved) != 1 || client.resolved[0].Approve {
		t.Fatalf("resolve calls = %+v, want one reject", client.resolved)
	}
	if !strings.Contains(client.resolved[0].Reason, "5") || !strings.Contains(client.resolved[0].Reason, "10") {
		t.Errorf("reason %q does not name both levels", client.resolved[0].Reason)
	}
}

func TestAdminAuditSendsNoticeToAdmins(t *testing.T) {
	r, _, client := newTestRouter(t, Config{
		AdminIDs:   []string{"a1", "a2"},
		AdminAudit: true,
	})

	r.HandleJoinRequest(context.Background(), model.JoinRequest{GroupID: "g1", UserID: "u1", Handle: "h1"})

	for _, admin := range []string{"a1", "a2"} {
		msgs := client.directMsgs[admin]
		if len(msgs) != 1 || !strings.Contains(msgs[0], noticeMarker) {
			t.Errorf("admin %s notices = %v", admin, msgs)
		}
	}
	// The notice must not also land in the group; the outcome still does.
	for _, m := range client.groupMsgs {
		if strings.Contains(m, noticeMarker) {
			t.Errorf("notice leaked to group in admin-audit mode: %q", m)
		}
	}
}

func TestResolveFailureSurfaces(t *testing.T) {
	r, _, client := newTestRouter(t, Config{})
	client.resolveErr = errors.New("gateway down")

	r.HandleJoinRequest(context.Background(), model.JoinRequest{GroupID: "g1", UserID: "u1", Handle: "h1"})

	last := client.groupMsgs[len(client.groupMsgs)-1]
	if !strings.Contains(last, "could not process") {
		t.Errorf("resolve failure not surfaced: %v", client.groupMsgs)
	}
}

func TestLeaveNotifyAndBlock(t *testing.T) {
	r, store, client := newTestRouter(t, Config{LeaveNotify: true, LeaveBlock: true})

	r.HandleLeave(context.Background(), model.LeaveEvent{GroupID: "g1", UserID: "u1"})

	if !store.Get("g1").IsBlocked("u1") {
		t.Error("leaving user not blacklisted")
	}
	if len(client.groupMsgs) != 1 {
		t.Fatalf("group messages = %v", client.groupMsgs)
	}
	if !strings.Contains(client.groupMsgs[0], "left the group") ||
		!strings.Contains(client.groupMsgs[0], "added to the blacklist") {
		t.Errorf("leave message = %q", client.groupMsgs[0])
	}
}

func TestLeaveSilentWithoutNotify(t *testing.T) {
	r, store, client := newTestRouter(t, Config{LeaveNotify: false, LeaveBlock: true})

	r.HandleLeave(context.Background(), model.LeaveEvent{GroupID: "g1", UserID: "u1"})

	if len(client.groupMsgs) != 0 {
		t.Errorf("leave reported with notify off: %v", client.groupMsgs)
	}
	if store.Get("g1").IsBlocked("u1") {
		t.Error("leave-block acted with notify off")
	}
}

func TestWelcomeAndMute(t *testing.T) {
	r, _, client := newTestRouter(t, Config{
		WelcomeTemplate: "welcome, {nickname}!",
		MuteSeconds:     60,
	})
	client.profiles["u1"] = model.Profile{Nickname: "Ann"}

	r.HandleJoinCompleted(context.Background(), model.JoinCompletedEvent{GroupID: "g1", UserID: "u1"})

	if len(client.groupMsgs) != 1 || client.groupMsgs[0] != "welcome, Ann!" {
		t.Errorf("welcome messages = %v", client.groupMsgs)
	}
	if len(client.mutes) != 1 || client.mutes[0].Duration != 60*time.Second {
		t.Errorf("mute calls = %+v", client.mutes)
	}
}

func TestMuteFailureSwallowed(t *testing.T) {
	r, _, client := newTestRouter(t, Config{WelcomeTemplate: "hi {nickname}", MuteSeconds: 30})
	client.muteErr = errors.New("no permission")

	r.HandleJoinCompleted(context.Background(), model.JoinCompletedEvent{GroupID: "g1", UserID: "u1"})

	if len(client.groupMsgs) != 1 {
		t.Errorf("welcome not sent despite mute failure: %v", client.groupMsgs)
	}
}

func TestSelfJoinSkipped(t *testing.T) {
	r, _, client := newTestRouter(t, Config{WelcomeTemplate: "hi {nickname}"})
	client.selfID = "bot"

	r.HandleJoinCompleted(context.Background(), model.JoinCompletedEvent{GroupID: "g1", UserID: "bot"})

	if len(client.groupMsgs) != 0 {
		t.Errorf("bot welcomed itself: %v", client.groupMsgs)
	}
}

func TestAlertSwapWhileHandling(t *testing.T) {
	r, store, _ := newTestRouter(t, Config{})
	store.SetRejectKeywords("g1", []string{"spam"})

	// Rejections exercise the dispatch path while the hot-reload side
	// swaps the dispatcher; run under -race.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.HandleJoinRequest(context.Background(), model.JoinRequest{
					GroupID: "g1", UserID: "u1", Comment: "spam", Handle: "h1",
				})
			}
		}()
	}
	for i := 0; i < 100; i++ {
		r.AttachAlerts(alert.NewDispatcher(nil))
	}
	wg.Wait()
}

func TestLeaveCountedWithoutNotify(t *testing.T) {
	r, _, _ := newTestRouter(t, Config{LeaveNotify: false})
	reg := prometheus.NewRegistry()
	r.AttachMetrics(metrics.New(reg))

	r.HandleLeave(context.Background(), model.LeaveEvent{GroupID: "g1", UserID: "u1"})

	fams, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, fam := range fams {
		if fam.GetName() != "joingate_events_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			if got := m.GetCounter().GetValue(); got != 1 {
				t.Errorf("leave events counted = %v, want 1", got)
			}
			return
		}
	}
	t.Error("leave event not counted while notify is off")
}

func TestProfileFailureDegrades(t *testing.T) {
	r, _, client := newTestRouter(t, Config{})
	client.profileErr = errors.New("lookup failed")

	r.HandleJoinRequest(context.Background(), model.JoinRequest{GroupID: "g1", UserID: "u1", Handle: "h1"})

	if len(client.resolved) != 1 {
		t.Fatal("request not resolved after profile failure")
	}
	if !strings.Contains(client.groupMsgs[0], "nickname: unknown") {
		t.Errorf("pre-notification = %q", client.groupMsgs[0])
	}
}
