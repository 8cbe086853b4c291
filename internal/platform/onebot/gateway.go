// Package onebot connects to a OneBot v11 bot runtime over WebSocket and
// adapts its event stream and action API to the platform interfaces.
package onebot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/joingate/joingate/internal/model"
	"github.com/joingate/joingate/internal/platform"
)

const apiTimeout = 10 * time.Second

type apiResponse struct {
	Status  string
	Retcode int
	Data    json.RawMessage
}

// Gateway is a OneBot v11 WebSocket client. It implements
// platform.Client; Run pumps inbound events to a platform.Handler.
type Gateway struct {
	conn *websocket.Conn

	mu      sync.Mutex
	pending map[string]chan apiResponse
	nextID  int64
	selfID  string
}

// Dial connects to the bot runtime. A non-empty accessToken is sent as a
// bearer token.
func Dial(ctx context.Context, url, accessToken string) (*Gateway, error) {
	opts := &websocket.DialOptions{}
	if accessToken != "" {
		opts.HTTPHeader = http.Header{
			"Authorization": []string{"Bearer " + accessToken},
		}
	}

	conn, _, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gateway %q: %w", url, err)
	}
	// Action responses can carry large payloads (get_msg on long messages).
	conn.SetReadLimit(1 << 20)

	return &Gateway{
		conn:    conn,
		pending: map[string]chan apiResponse{},
	}, nil
}

// Close tears down the connection.
func (g *Gateway) Close() error {
	return g.conn.Close(websocket.StatusNormalClosure, "")
}

// SelfID returns the bot's own account id, once learned from the event
// stream. Empty before the first event arrives.
func (g *Gateway) SelfID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selfID
}

// Run reads frames until the connection drops or ctx is cancelled.
// Events are dispatched to the handler in their own goroutines so a
// handler calling back into the action API never deadlocks the reader.
func (g *Gateway) Run(ctx context.Context, handler platform.Handler) error {
	for {
		_, data, err := g.conn.Read(ctx)
		if err != nil {
			g.failPending()
			return fmt.Errorf("gateway read: %w", err)
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			fmt.Fprintf(os.Stderr, "onebot: bad frame: %v\n", err)
			continue
		}

		if f.isResponse() {
			g.settle(&f)
			continue
		}

		if f.SelfID != 0 {
			g.mu.Lock()
			g.selfID = formatID(f.SelfID)
			g.mu.Unlock()
		}

		go g.dispatch(ctx, handler, &f)
	}
}

func (g *Gateway) dispatch(ctx context.Context, handler platform.Handler, f *frame) {
	switch f.PostType {
	case "request":
		if f.RequestType == "group" && f.SubType == "add" {
			handler.HandleJoinRequest(ctx, model.JoinRequest{
				GroupID: formatID(f.GroupID),
				UserID:  formatID(f.UserID),
				Comment: f.Comment,
				Handle:  f.Flag,
			})
		}

	case "notice":
		switch f.NoticeType {
		case "group_decrease":
			if f.SubType == "leave" {
				handler.HandleLeave(ctx, model.LeaveEvent{
					GroupID: formatID(f.GroupID),
					UserID:  formatID(f.UserID),
				})
			}
		case "group_increase":
			handler.HandleJoinCompleted(ctx, model.JoinCompletedEvent{
				GroupID: formatID(f.GroupID),
				UserID:  formatID(f.UserID),
			})
		}

	case "message":
		if f.MessageType != "group" {
			return
		}
		msg := model.GroupMessage{
			GroupID: formatID(f.GroupID),
			UserID:  formatID(f.UserID),
			Text:    messageText(f.Message, f.RawMessage),
		}
		if id := replyID(f.Message); id != "" {
			msg.Quoted = g.fetchMessage(ctx, id)
		}
		handler.HandleGroupMessage(ctx, msg)
	}
}

// fetchMessage resolves a quoted message's text by id. Failure yields ""
// so the caller treats the quote as absent.
func (g *Gateway) fetchMessage(ctx context.Context, id string) string {
	msgID, err := strconv.Atoi(id)
	if err != nil {
		return ""
	}
	data, err := g.call(ctx, "get_msg", map[string]any{"message_id": msgID})
	if err != nil {
		fmt.Fprintf(os.Stderr, "onebot: get_msg %s: %v\n", id, err)
		return ""
	}
	var body struct {
		Message    json.RawMessage `json:"message"`
		RawMessage string          `json:"raw_message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return messageText(body.Message, body.RawMessage)
}

// call sends an action and waits for its echo-correlated response.
func (g *Gateway) call(ctx context.Context, action string, params map[string]any) (json.RawMessage, error) {
	g.mu.Lock()
	g.nextID++
	echo := strconv.FormatInt(g.nextID, 10)
	ch := make(chan apiResponse, 1)
	g.pending[echo] = ch
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.pending, echo)
		g.mu.Unlock()
	}()

	payload, err := json.Marshal(map[string]any{
		"action": action,
		"params": params,
		"echo":   echo,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", action, err)
	}

	wctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()
	if err := g.conn.Write(wctx, websocket.MessageText, payload); err != nil {
		return nil, fmt.Errorf("send %s: %w", action, err)
	}

	select {
	case <-wctx.Done():
		return nil, fmt.Errorf("%s: %w", action, wctx.Err())
	case res, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("%s: connection closed", action)
		}
		if res.Status == "failed" || res.Retcode != 0 {
			return nil, fmt.Errorf("%s failed: retcode %d", action, res.Retcode)
		}
		return res.Data, nil
	}
}

func (g *Gateway) settle(f *frame) {
	var echo string
	if err := json.Unmarshal(f.Echo, &echo); err != nil {
		return
	}
	g.mu.Lock()
	ch, ok := g.pending[echo]
	g.mu.Unlock()
	if ok {
		ch <- apiResponse{Status: f.Status, Retcode: f.Retcode, Data: f.Data}
	}
}

func (g *Gateway) failPending() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for echo, ch := range g.pending {
		close(ch)
		delete(g.pending, echo)
	}
}
