// Package engine implements the admission decision for join requests.
package engine

import (
	"fmt"
	"strings"

	"github.com/joingate/joingate/internal/attempts"
	"github.com/joingate/joingate/internal/model"
	"github.com/joingate/joingate/internal/rules"
)

// Rule identifiers carried on verdicts, for audit and alerting.
const (
	RuleBlacklist     = "blacklist.member"
	RuleLevel         = "level.threshold"
	RuleRejectKeyword = "keyword.reject"
	RuleAttempts      = "attempts.limit"
	RuleAcceptKeyword = "keyword.accept"
	RuleDefault       = "default.allow"
)

// Engine evaluates join requests against a group's rules. It borrows read
// access to the rule store and requests blacklist inserts through it; the
// attempt tracker is owned and mutated exclusively here.
type Engine struct {
	rules    *rules.Store
	attempts *attempts.Tracker
}

// New creates an engine over the given store and tracker.
func New(r *rules.Store, t *attempts.Tracker) *Engine {
	return &Engine{rules: r, attempts: t}
}

// Evaluate decides whether to admit the user.
//
// Precedence order (must not be changed), first match wins:
//  1. Blacklist membership — reject
//  2. Level threshold — reject when the level is known and below
//  3. Reject-keyword hit — reject and insert the user into the blacklist
//  4. Attempt cap — the counter advances on every call while a cap is set,
//     whatever the later rules decide
//  5. Accept-keyword hit — approve
//  6. Default — approve with an empty reason
//
// comment may be empty and userLevel may be nil; rules that depend on them
// are skipped. Evaluate is total: it never fails.
func (e *Engine) Evaluate(groupID, userID, comment string, userLevel *int) model.Verdict {
	return e.evaluate(groupID, userID, comment, userLevel, true)
}

// Check runs the same precedence as Evaluate but with every mutation
// suppressed: no blacklist insert, no attempt counted. The attempt-cap
// rule judges the counter as it stands.
func (e *Engine) Check(groupID, userID, comment string, userLevel *int) model.Verdict {
	return e.evaluate(groupID, userID, comment, userLevel, false)
}

func (e *Engine) evaluate(groupID, userID, comment string, userLevel *int, commit bool) model.Verdict {
	cfg := e.rules.Get(groupID)

	if cfg.IsBlocked(userID) {
		return model.Verdict{Reason: "blacklisted user", Rule: RuleBlacklist}
	}

	if cfg.MinLevel > 0 && userLevel != nil && *userLevel < cfg.MinLevel {
		return model.Verdict{
			Reason: fmt.Sprintf("level too low (%d<%d)", *userLevel, cfg.MinLevel),
			Rule:   RuleLevel,
		}
	}

	if comment != "" && containsAny(comment, cfg.RejectKeywords) {
		if commit {
			// The one rule with an observable mutation: the insert is
			// persisted before Evaluate returns, so a concurrent evaluation
			// for the same user sees the updated blacklist.
			e.rules.AddBlockedUser(groupID, userID)
		}
		return model.Verdict{Reason: "matched reject keyword", Rule: RuleRejectKeyword}
	}

	if cfg.MaxAttempts > 0 {
		key := model.AttemptKey{GroupID: groupID, UserID: userID}
		count := e.attempts.Count(key)
		if commit {
			count = e.attempts.Record(key)
		}
		if count > cfg.MaxAttempts {
			return model.Verdict{
				Reason: fmt.Sprintf("attempt limit reached (%d)", cfg.MaxAttempts),
				Rule:   RuleAttempts,
			}
		}
	}

	if comment != "" && containsAny(comment, cfg.AcceptKeywords) {
		return model.Verdict{Approve: true, Reason: "passed verification", Rule: RuleAcceptKeyword}
	}

	return model.Verdict{Approve: true, Rule: RuleDefault}
}

// containsAny reports whether s contains any of the keywords,
// case-insensitively. Empty keywords never match.
func containsAny(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
