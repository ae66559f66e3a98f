// Package transport owns the WebSocket connection to the game server: it
// reads frames off the wire, decodes them via internal/wire, and feeds the
// netstate engine, and it sends local input frames back.
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hknc0/orbit/internal/diagnostics"
	"github.com/hknc0/orbit/internal/netstate"
	"github.com/hknc0/orbit/internal/wire"
)

// Engine is the subset of netstate.Engine the transport layer drives. A
// narrow interface keeps this package testable without a live socket and
// without depending on netstate's full surface.
type Engine interface {
	ApplySnapshot(netstate.GameSnapshot)
	ApplyDelta(netstate.DeltaUpdate)
	SetLocalPlayerID(string)
	MarkWellDestroyed(int)
}

// Client owns one WebSocket connection and the read loop that feeds an
// Engine. All exported methods except Run are safe to call concurrently with
// Run; Run itself must only ever be invoked once per Client.
type Client struct {
	url    string
	header http.Header
	log    *slog.Logger

	conn *websocket.Conn
}

// NewClient creates a Client for the given server URL. header carries any
// connection-time auth the deployment requires (a session token, typically).
func NewClient(url string, header http.Header, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{url: url, header: header, log: log}
}

// Dial opens the WebSocket connection. It must succeed before Run is called.
func (c *Client) Dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, c.url, c.header)
	if err != nil {
		return fmt.Errorf("transport: dial %s: %w", c.url, err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	c.conn = conn
	c.log.Info("connected", "url", c.url)
	return nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Run blocks reading frames off the connection and driving engine until the
// connection closes or ctx is cancelled. Decode errors on a single frame are
// logged and skipped rather than terminating the loop, since one malformed
// frame should not drop an otherwise-healthy session.
func (c *Client) Run(ctx context.Context, engine Engine) error {
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		c.conn.Close()
		close(done)
	}()

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-done:
				return ctx.Err()
			default:
			}
			return fmt.Errorf("transport: read: %w", err)
		}

		if err := c.handleFrame(frame, engine); err != nil {
			c.log.Warn("dropped malformed frame", "error", err)
		}
	}
}

func (c *Client) handleFrame(frame []byte, engine Engine) error {
	env, err := wire.Decode(frame)
	if err != nil {
		diagnostics.RecordFrameDropped("decode_error")
		return err
	}
	if env.ProtocolVersion != wire.ProtocolVersion {
		diagnostics.RecordFrameDropped("version_mismatch")
		return fmt.Errorf("protocol version mismatch: got %d, want %d", env.ProtocolVersion, wire.ProtocolVersion)
	}

	switch env.Type {
	case wire.TypeSnapshot:
		payload, err := wire.DecodeSnapshot(env)
		if err != nil {
			return err
		}
		engine.ApplySnapshot(payload.ToGameSnapshot())

	case wire.TypeDelta:
		payload, err := wire.DecodeDelta(env)
		if err != nil {
			return err
		}
		engine.ApplyDelta(payload.ToDeltaUpdate())

	case wire.TypeJoinAccepted:
		payload, err := wire.DecodeJoinAccepted(env)
		if err != nil {
			return err
		}
		engine.SetLocalPlayerID(payload.PlayerID)

	case wire.TypeGravityWellDestroyed:
		payload, err := wire.DecodeGravityWellDestroyed(env)
		if err != nil {
			return err
		}
		engine.MarkWellDestroyed(payload.ID)

	case wire.TypeKicked:
		payload, err := wire.DecodeKicked(env)
		if err != nil {
			return err
		}
		return fmt.Errorf("kicked by server: %s", payload.Reason)

	case wire.TypePong, wire.TypeEvent, wire.TypePhaseChange:
		// Accepted and discarded: the engine has no use for these, and
		// nothing in this client forwards them anywhere else.

	default:
		c.log.Debug("unhandled message type", "type", env.Type)
	}

	return nil
}

// SendInput encodes and writes a local input sample to the server.
func (c *Client) SendInput(input netstate.PlayerInput) error {
	frame, err := wire.EncodeInput(input)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}
