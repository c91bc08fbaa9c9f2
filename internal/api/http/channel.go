package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mind-engage/mindengage-matchgame/internal/metrics"
	"github.com/mind-engage/mindengage-matchgame/internal/origin"
	"github.com/mind-engage/mindengage-matchgame/internal/protocol"
	"github.com/mind-engage/mindengage-matchgame/internal/report"
	"github.com/mind-engage/mindengage-matchgame/internal/widget"
)

const (
	maxFrameBytes = 1 << 20
	writeWait     = 10 * time.Second
)

// Frame kinds exchanged with the iframe front-end.
const (
	KindHostMessage       = "host_message"
	KindSelectQuestion    = "select_question"
	KindSelectExplanation = "select_explanation"
	KindDeselect          = "deselect"
	KindSubmit            = "submit"

	KindState       = "state"
	KindPostMessage = "post_message"
)

// InFrame is one event relayed by the front-end.
type InFrame struct {
	Kind   string          `json:"kind"`
	Origin string          `json:"origin,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	ID     string          `json:"id,omitempty"`
}

// OutFrame is either a render state or a message the front-end must hand to
// window.parent.postMessage(data, targetOrigin).
type OutFrame struct {
	Kind         string             `json:"kind"`
	State        *widget.View       `json:"state,omitempty"`
	TargetOrigin string             `json:"targetOrigin,omitempty"`
	Data         *protocol.Envelope `json:"data,omitempty"`
}

// NewShellFunc builds the shell for one connection around its poster.
type NewShellFunc func(p report.Poster) *widget.Shell

// wsConn serialises writes and remembers which origin the host window was
// last observed at. A browser discards postMessage calls whose targetOrigin
// does not match the parent, so only that target is forwarded.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
	host string
}

func (c *wsConn) write(f OutFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(f)
}

func (c *wsConn) setHost(o string) {
	c.mu.Lock()
	c.host = o
	c.mu.Unlock()
}

func (c *wsConn) PostMessage(_ context.Context, targetOrigin string, env protocol.Envelope) error {
	c.mu.Lock()
	host := c.host
	c.mu.Unlock()
	if targetOrigin != host {
		return nil
	}
	return c.write(OutFrame{Kind: KindPostMessage, TargetOrigin: targetOrigin, Data: &env})
}

// ChannelHandler upgrades GET /channel and runs one widget instance per
// connection until the client goes away.
func ChannelHandler(allow origin.Allowlist, newShell NewShellFunc) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return origin.CheckRequest(r, allow) },
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already replied
			log.Printf("channel: upgrade from %s: %v", r.RemoteAddr, err)
			return
		}
		metrics.ActiveChannels.Inc()
		defer metrics.ActiveChannels.Dec()
		defer conn.Close()
		conn.SetReadLimit(maxFrameBytes)

		c := &wsConn{conn: conn}
		sh := newShell(c)
		ctx := context.WithoutCancel(r.Context())

		if err := c.write(stateFrame(sh)); err != nil {
			return
		}
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("channel: read: %v", err)
				}
				return
			}
			var f InFrame
			if err := json.Unmarshal(raw, &f); err != nil {
				log.Printf("channel: undecodable frame: %v", err)
				continue
			}
			if !handleFrame(ctx, c, sh, allow, f) {
				continue
			}
			if err := c.write(stateFrame(sh)); err != nil {
				log.Printf("channel: write: %v", err)
				return
			}
		}
	}
}

// handleFrame applies f to the shell. It reports false for frames that are
// ignored outright.
func handleFrame(ctx context.Context, c *wsConn, sh *widget.Shell, allow origin.Allowlist, f InFrame) bool {
	switch f.Kind {
	case KindHostMessage:
		if origin.IsAllowed(f.Origin, allow) {
			c.setHost(f.Origin)
		}
		_ = sh.HandleMessage(ctx, f.Origin, f.Data)
	case KindSelectQuestion:
		sh.SelectQuestion(f.ID)
	case KindSelectExplanation:
		if err := sh.SelectExplanation(ctx, f.ID); err != nil {
			log.Printf("channel: %v", err)
		}
	case KindDeselect:
		sh.Deselect()
	case KindSubmit:
		if err := sh.Submit(ctx); err != nil {
			log.Printf("channel: %v", err)
		}
	default:
		log.Printf("channel: ignoring frame kind %q", f.Kind)
		return false
	}
	return true
}

func stateFrame(sh *widget.Shell) OutFrame {
	v := sh.View()
	return OutFrame{Kind: KindState, State: &v}
}
