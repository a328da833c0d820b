/*
Package registry tracks live client sessions and their room memberships.

This file defines the Session struct, representing one live WebSocket
connection bound to a user identity. It manages the connection lifecycle and
the read/write pumps, and translates inbound join-group/leave-group events
into room membership changes.
*/
package registry

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ripple/internal/app/wire"
	"ripple/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 4096

	// capacity of the per-session outbound queue.
	sendQueueSize = 256
)

// Session represents one live transport connection bound to a user identity.
// A user may hold several concurrent sessions (multi-device); they coexist and
// each receives its own copy of every broadcast.
type Session struct {
	// ID is the unique handle of this session.
	ID string

	// Identity is the stable user identifier this session is bound to.
	Identity string

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// owning registry, used for room membership changes and deregistration.
	registry *Registry

	// a buffered channel used to queue frames waiting to be sent to the client.
	send chan []byte

	// rooms currently joined. Guarded by the registry's lock.
	rooms map[string]struct{}

	// closeOnce guards the send channel against double close.
	closeOnce sync.Once

	// structured logger with session context.
	logger zerolog.Logger
}

// NewSession constructs a Session bound to the given identity and connection.
func NewSession(reg *Registry, conn *websocket.Conn, identity string) *Session {
	id := uuid.NewString()

	sessionLogger := logx.Logger().With().
		Str("session_id", id).
		Str("identity", identity).
		Logger()

	return &Session{
		ID:       id,
		Identity: identity,
		conn:     conn,
		registry: reg,
		send:     make(chan []byte, sendQueueSize),
		rooms:    make(map[string]struct{}),
		logger:   sessionLogger,
	}
}

// ReadPump reads frames from the WebSocket connection until it closes.
// It handles heartbeats (Pong) and inbound room subscription events, and
// deregisters the session on exit. Abrupt transport loss takes the same
// path as a clean close.
func (s *Session) ReadPump() {
	defer func() {
		s.registry.Unregister(s)

		if err := s.conn.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Session connection close error")
		}
	}()

	s.conn.SetReadLimit(maxMessageSize)

	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		s.processInboundFrame(frame)
	}
}

// processInboundFrame handles raw frames received from the client.
func (s *Session) processInboundFrame(frame []byte) {
	var envelope wire.Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		s.logger.Warn().Err(err).Bytes("frame", frame).Msg("Client sent invalid JSON")
		return
	}

	switch envelope.Event {
	case wire.EventJoinGroup:
		if groupID, ok := s.groupRef(envelope.Payload); ok {
			s.registry.JoinRoom(s, wire.GroupRoom(groupID))
		}

	case wire.EventLeaveGroup:
		if groupID, ok := s.groupRef(envelope.Payload); ok {
			s.registry.LeaveRoom(s, wire.GroupRoom(groupID))
		}

	default:
		s.logger.Warn().Str("event", envelope.Event).Msg("Client sent unsupported event")
	}
}

// groupRef extracts the group id from a join/leave payload.
func (s *Session) groupRef(payload json.RawMessage) (string, bool) {
	var ref wire.GroupRefPayload
	if err := json.Unmarshal(payload, &ref); err != nil || ref.GroupID == "" {
		s.logger.Warn().Msg("Client sent invalid group reference payload")
		return "", false
	}
	return ref.GroupID, true
}

// WritePump writes queued frames to the WebSocket connection and keeps the
// heartbeat alive. It exits when the send channel closes or a write fails.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := s.conn.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Session connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-s.send:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				if err := s.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					s.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.logger.Error().Err(err).Msg("Error writing frame")
				return
			}

		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Error().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}

// enqueue appends a frame to the session's outbound queue without blocking.
// A full queue drops the frame; the client resynchronizes from persisted
// state on reconnect.
func (s *Session) enqueue(frame []byte) {
	defer func() {
		// the send channel may close concurrently with a broadcast
		recover()
	}()

	select {
	case s.send <- frame:
	default:
		s.logger.Warn().Int("queue_len", len(s.send)).Msg("Session send queue full, dropping frame")
	}
}

// closeSend closes the outbound queue exactly once, ending the WritePump.
func (s *Session) closeSend() {
	s.closeOnce.Do(func() {
		close(s.send)
	})
}
