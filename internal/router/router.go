// Package router dispatches inbound platform events to the admission
// engine and performs the resulting side effects: request resolution,
// notifications, welcome messages, timed mutes, and leave auto-blacklisting.
package router

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joingate/joingate/internal/alert"
	"github.com/joingate/joingate/internal/audit"
	"github.com/joingate/joingate/internal/engine"
	"github.com/joingate/joingate/internal/metrics"
	"github.com/joingate/joingate/internal/model"
	"github.com/joingate/joingate/internal/platform"
	"github.com/joingate/joingate/internal/rules"
)

// Config holds the behavior toggles for event handling. It is swappable at
// runtime through UpdateConfig (config hot-reload).
type Config struct {
	// AdminIDs are users allowed to run rule commands; with AdminAudit set,
	// join-request notifications go to them instead of the group.
	AdminIDs        []string
	AdminAudit      bool
	LeaveNotify     bool
	LeaveBlock      bool
	WelcomeTemplate string
	MuteSeconds     int
}

// Router implements platform.Handler over the admission engine and rule
// store. Optional collaborators (audit log, alerts, metrics) are attached
// after construction and may stay nil.
type Router struct {
	mu  sync.RWMutex
	cfg Config

	rules  *rules.Store
	engine *engine.Engine
	client platform.Client

	auditLog *audit.Log
	alerts   *alert.Dispatcher
	metrics  *metrics.Metrics
}

// New creates a router over the given store, engine, and platform client.
func New(cfg Config, store *rules.Store, eng *engine.Engine, client platform.Client) *Router {
	return &Router{
		cfg:    cfg,
		rules:  store,
		engine: eng,
		client: client,
	}
}

// AttachAudit wires a verdict audit log.
func (r *Router) AttachAudit(l *audit.Log) { r.auditLog = l }

// AttachAlerts wires a webhook alert dispatcher. The hot-reload path
// swaps it while event goroutines are in flight, so the pointer is
// guarded by the same mutex as the config.
func (r *Router) AttachAlerts(d *alert.Dispatcher) {
	r.mu.Lock()
	r.alerts = d
	r.mu.Unlock()
}

// AttachMetrics wires Prometheus counters.
func (r *Router) AttachMetrics(m *metrics.Metrics) { r.metrics = m }

// UpdateConfig atomically swaps the behavior toggles. Called by the config
// hot-reloader.
func (r *Router) UpdateConfig(cfg Config) {
	r.mu.Lock()
	r.cfg = cfg
	r.mu.Unlock()
}

func (r *Router) config() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// HandleJoinRequest gates on the group switch, notifies, evaluates, and
// resolves the request. When the group is disabled nothing runs at all,
// not even attempt tracking.
func (r *Router) HandleJoinRequest(ctx context.Context, req model.JoinRequest) {
	if !r.rules.Get(req.GroupID).Enabled {
		return
	}
	r.rules.EnsureGroup(req.GroupID)
	r.metrics.ObserveEvent("join_request")

	profile := r.profile(ctx, req.UserID)
	cfg := r.config()

	// Pre-notification goes out before the verdict is known; the verdict
	// outcome follows as a separate message.
	notice := FormatNotice(profile, req)
	if cfg.AdminAudit {
		r.notifyAdmins(ctx, cfg.AdminIDs, notice)
	} else {
		r.sendGroup(ctx, req.GroupID, notice)
	}

	verdict := r.engine.Evaluate(req.GroupID, req.UserID, req.Comment, profile.Level)
	r.metrics.ObserveVerdict(verdict.Approve)
	if verdict.Rule == engine.RuleRejectKeyword {
		r.metrics.ObserveBlacklistInsert()
	}
	r.recordVerdict(req.GroupID, req.UserID, verdict)

	reason := ""
	if !verdict.Approve {
		reason = verdict.Reason
	}
	if err := r.client.ResolveJoinRequest(ctx, req.Handle, verdict.Approve, reason); err != nil {
		fmt.Fprintf(os.Stderr, "router: resolve join request: %v\n", err)
		r.sendGroup(ctx, req.GroupID, "could not process the join request")
		return
	}

	outcome := "auto-approved"
	if !verdict.Approve {
		outcome = "auto-rejected"
	}
	if verdict.Reason != "" {
		outcome += ": " + verdict.Reason
	}
	r.sendGroup(ctx, req.GroupID, outcome)
}

// HandleLeave reports a voluntary leave and, when configured, blacklists
// the leaving user.
func (r *Router) HandleLeave(ctx context.Context, ev model.LeaveEvent) {
	if !r.rules.Get(ev.GroupID).Enabled {
		return
	}
	r.rules.EnsureGroup(ev.GroupID)
	r.metrics.ObserveEvent("leave")

	cfg := r.config()
	if !cfg.LeaveNotify {
		return
	}

	msg := fmt.Sprintf("%s(%s) left the group", r.nickname(ctx, ev.UserID), ev.UserID)
	if cfg.LeaveBlock {
		if r.rules.AddBlockedUser(ev.GroupID, ev.UserID) {
			r.metrics.ObserveBlacklistInsert()
			r.dispatchAlert(alert.Event{
				GroupID:  ev.GroupID,
				UserID:   ev.UserID,
				Decision: "reject",
				Reason:   "left the group",
				Type:     "auto_blacklist",
			})
		}
		msg += ", added to the blacklist"
	}
	r.sendGroup(ctx, ev.GroupID, msg)
}

// HandleJoinCompleted welcomes a new member and optionally applies a timed
// mute. The two are independent; the mute is best-effort and its failure
// is swallowed.
func (r *Router) HandleJoinCompleted(ctx context.Context, ev model.JoinCompletedEvent) {
	if !r.rules.Get(ev.GroupID).Enabled {
		return
	}
	r.rules.EnsureGroup(ev.GroupID)

	if ev.UserID == r.client.SelfID() {
		return
	}
	r.metrics.ObserveEvent("join_completed")

	cfg := r.config()
	if cfg.WelcomeTemplate != "" {
		welcome := strings.ReplaceAll(cfg.WelcomeTemplate, "{nickname}", r.nickname(ctx, ev.UserID))
		r.sendGroup(ctx, ev.GroupID, welcome)
	}
	if cfg.MuteSeconds > 0 {
		_ = r.client.MuteUser(ctx, ev.GroupID, ev.UserID, time.Duration(cfg.MuteSeconds)*time.Second)
	}
}

// HandleGroupMessage runs the admin command surface: rule configuration and
// the quoted-notice manual override. Commands work regardless of the group
// switch so an admin can always turn the review on.
func (r *Router) HandleGroupMessage(ctx context.Context, msg model.GroupMessage) {
	if !r.isAdmin(msg.UserID) {
		return
	}
	reply, handled := r.handleCommand(ctx, msg)
	if handled && reply != "" {
		r.sendGroup(ctx, msg.GroupID, reply)
	}
}

func (r *Router) isAdmin(userID string) bool {
	for _, id := range r.config().AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// profile looks up the requester; lookup failure degrades to an unknown
// nickname with no level rather than blocking the flow.
func (r *Router) profile(ctx context.Context, userID string) model.Profile {
	p, err := r.client.GetProfile(ctx, userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "router: profile lookup %s: %v\n", userID, err)
		return model.Profile{Nickname: "unknown"}
	}
	if p.Nickname == "" {
		p.Nickname = "unknown"
	}
	return p
}

func (r *Router) nickname(ctx context.Context, userID string) string {
	return r.profile(ctx, userID).Nickname
}

// notifyAdmins direct-messages each admin; one admin's failure doesn't
// block the others.
func (r *Router) notifyAdmins(ctx context.Context, adminIDs []string, text string) {
	for _, id := range adminIDs {
		if err := r.client.SendDirectMessage(ctx, id, text); err != nil {
			fmt.Fprintf(os.Stderr, "router: notify admin %s: %v\n", id, err)
		}
	}
}

func (r *Router) sendGroup(ctx context.Context, groupID, text string) {
	if err := r.client.SendGroupMessage(ctx, groupID, text); err != nil {
		fmt.Fprintf(os.Stderr, "router: send to group %s: %v\n", groupID, err)
	}
}

func (r *Router) recordVerdict(groupID, userID string, verdict model.Verdict) {
	decision := "reject"
	if verdict.Approve {
		decision = "approve"
	}

	if r.auditLog != nil {
		if err := r.auditLog.Record(audit.Entry{
			GroupID:  groupID,
			UserID:   userID,
			Decision: decision,
			Reason:   verdict.Reason,
			Rule:     verdict.Rule,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "router: audit: %v\n", err)
		}
	}

	if !verdict.Approve {
		ev := alert.Event{
			GroupID:  groupID,
			UserID:   userID,
			Decision: decision,
			Reason:   verdict.Reason,
			Rule:     verdict.Rule,
		}
		if verdict.Rule == engine.RuleRejectKeyword {
			ev.Type = "auto_blacklist"
		}
		r.dispatchAlert(ev)
	}
}

func (r *Router) dispatchAlert(ev alert.Event) {
	r.mu.RLock()
	alerts := r.alerts
	r.mu.RUnlock()
	if alerts == nil {
		return
	}
	if ev.Timestamp == "" {
		ev.Timestamp = time.Now().UTC().Format(audit.TimestampFormat)
	}
	alerts.Dispatch(ev)
}
