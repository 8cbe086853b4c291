package onebot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joingate/joingate/internal/model"
)

// ResolveJoinRequest approves or rejects a pending group join request by
// its flag. The reason is only shown to the requester on rejection.
func (g *Gateway) ResolveJoinRequest(ctx context.Context, handle string, approve bool, reason string) error {
	params := map[string]any{
		"flag":     handle,
		"sub_type": "add",
		"approve":  approve,
	}
	if !approve && reason != "" {
		params["reason"] = reason
	}
	_, err := g.call(ctx, "set_group_add_request", params)
	return err
}

func (g *Gateway) SendGroupMessage(ctx context.Context, groupID, text string) error {
	gid, err := parseID(groupID)
	if err != nil {
		return err
	}
	_, err = g.call(ctx, "send_group_msg", map[string]any{
		"group_id": gid,
		"message":  text,
	})
	return err
}

func (g *Gateway) SendDirectMessage(ctx context.Context, userID, text string) error {
	uid, err := parseID(userID)
	if err != nil {
		return err
	}
	_, err = g.call(ctx, "send_private_msg", map[string]any{
		"user_id": uid,
		"message": text,
	})
	return err
}

func (g *Gateway) MuteUser(ctx context.Context, groupID, userID string, duration time.Duration) error {
	gid, err := parseID(groupID)
	if err != nil {
		return err
	}
	uid, err := parseID(userID)
	if err != nil {
		return err
	}
	_, err = g.call(ctx, "set_group_ban", map[string]any{
		"group_id": gid,
		"user_id":  uid,
		"duration": int(duration.Seconds()),
	})
	return err
}

// GetProfile fetches a user's nickname and account level. Implementations
// report the level under different keys; either is accepted and a missing
// level stays nil.
func (g *Gateway) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	uid, err := parseID(userID)
	if err != nil {
		return model.Profile{}, err
	}
	data, err := g.call(ctx, "get_stranger_info", map[string]any{"user_id": uid})
	if err != nil {
		return model.Profile{}, err
	}

	var info struct {
		Nickname string    `json:"nickname"`
		QQLevel  *looseInt `json:"qqLevel"`
		Level    *looseInt `json:"level"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return model.Profile{}, fmt.Errorf("decode stranger info: %w", err)
	}

	p := model.Profile{Nickname: info.Nickname}
	switch {
	case info.QQLevel != nil:
		lv := int(*info.QQLevel)
		p.Level = &lv
	case info.Level != nil:
		lv := int(*info.Level)
		p.Level = &lv
	}
	return p, nil
}
