package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// --- Input/Output types ---

// CheckInput defines parameters for the joingate_check tool.
type CheckInput struct {
	GroupID string `json:"group_id" jsonschema:"group the request targets"`
	UserID  string `json:"user_id" jsonschema:"requesting user"`
	Comment string `json:"comment,omitempty" jsonschema:"join request comment"`
	Level   *int   `json:"level,omitempty" jsonschema:"requester account level, omit when unknown"`
}

// CheckOutput contains the admission verdict.
type CheckOutput struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason,omitempty"`
	Rule    string `json:"rule"`
}

// RulesInput defines parameters for the joingate_rules tool.
type RulesInput struct {
	GroupID string `json:"group_id" jsonschema:"group to inspect"`
}

// RulesOutput mirrors the stored group config.
type RulesOutput struct {
	Enabled        bool     `json:"enabled"`
	AcceptKeywords []string `json:"accept_keywords,omitempty"`
	RejectKeywords []string `json:"reject_keywords,omitempty"`
	MinLevel       int      `json:"min_level,omitempty"`
	MaxAttempts    int      `json:"max_attempts,omitempty"`
	BlockedUsers   []string `json:"blocked_users,omitempty"`
}

// BlockInput defines parameters for joingate_block and joingate_unblock.
type BlockInput struct {
	GroupID string `json:"group_id" jsonschema:"group whose blacklist to change"`
	UserID  string `json:"user_id" jsonschema:"user to add or remove"`
}

// BlockOutput confirms the change.
type BlockOutput struct {
	Changed bool   `json:"changed"`
	Status  string `json:"status"`
}

// --- Handlers ---

func (s *Server) handleCheck(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckInput) (*mcpsdk.CallToolResult, CheckOutput, error) {
	if input.GroupID == "" || input.UserID == "" {
		return nil, CheckOutput{}, fmt.Errorf("group_id and user_id are required")
	}

	v := s.engine.Check(input.GroupID, input.UserID, input.Comment, input.Level)
	return nil, CheckOutput{
		Approve: v.Approve,
		Reason:  v.Reason,
		Rule:    v.Rule,
	}, nil
}

func (s *Server) handleRules(ctx context.Context, req *mcpsdk.CallToolRequest, input RulesInput) (*mcpsdk.CallToolResult, RulesOutput, error) {
	if input.GroupID == "" {
		return nil, RulesOutput{}, fmt.Errorf("group_id is required")
	}

	cfg := s.store.Get(input.GroupID)
	return nil, RulesOutput{
		Enabled:        cfg.Enabled,
		AcceptKeywords: cfg.AcceptKeywords,
		RejectKeywords: cfg.RejectKeywords,
		MinLevel:       cfg.MinLevel,
		MaxAttempts:    cfg.MaxAttempts,
		BlockedUsers:   cfg.BlockedUsers,
	}, nil
}

func (s *Server) handleBlock(ctx context.Context, req *mcpsdk.CallToolRequest, input BlockInput) (*mcpsdk.CallToolResult, BlockOutput, error) {
	if input.GroupID == "" || input.UserID == "" {
		return nil, BlockOutput{}, fmt.Errorf("group_id and user_id are required")
	}

	if s.store.AddBlockedUser(input.GroupID, input.UserID) {
		return nil, BlockOutput{Changed: true, Status: "blocked"}, nil
	}
	return nil, BlockOutput{Status: "already blocked"}, nil
}

func (s *Server) handleUnblock(ctx context.Context, req *mcpsdk.CallToolRequest, input BlockInput) (*mcpsdk.CallToolResult, BlockOutput, error) {
	if input.GroupID == "" || input.UserID == "" {
		return nil, BlockOutput{}, fmt.Errorf("group_id and user_id are required")
	}

	if s.store.RemoveBlockedUser(input.GroupID, input.UserID) {
		return nil, BlockOutput{Changed: true, Status: "unblocked"}, nil
	}
	return nil, BlockOutput{Status: "not on the blacklist"}, nil
}
