/*
Package registry tracks live client sessions and their room memberships.

This file defines the Registry struct, the process-wide owner of all session
and room bookkeeping. It maps a user identity to its live sessions (a user may
be connected from several devices at once), maps room names to the sessions
currently joined, and broadcasts events to rooms on a best-effort basis.
*/
package registry

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"ripple/internal/app/wire"
	"ripple/internal/pkg/logx"
)

// Registry is the central owner of session and room state. It is constructed
// at process start and torn down at shutdown; nothing else mutates its tables.
type Registry struct {
	// mu protects all three maps and every session's room set.
	mu sync.RWMutex

	// sessions maps session id to the live session.
	sessions map[string]*Session

	// identities maps a user identity to its live sessions, keyed by session id.
	identities map[string]map[string]*Session

	// rooms maps a room name to the sessions currently joined, keyed by session id.
	rooms map[string]map[string]*Session

	// structured logger with Registry context.
	logger zerolog.Logger
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	registryLogger := logx.Logger().With().Str("component", "Registry").Logger()

	return &Registry{
		sessions:   make(map[string]*Session),
		identities: make(map[string]map[string]*Session),
		rooms:      make(map[string]map[string]*Session),
		logger:     registryLogger,
	}
}

// Register adds a session to the registry, joins it to its identity's personal
// room, and broadcasts the updated presence list to every live session.
func (r *Registry) Register(s *Session) {
	r.mu.Lock()

	r.sessions[s.ID] = s

	byID, ok := r.identities[s.Identity]
	if !ok {
		byID = make(map[string]*Session)
		r.identities[s.Identity] = byID
	}
	byID[s.ID] = s

	r.joinRoomLocked(s, wire.UserRoom(s.Identity))

	frame := r.presenceFrameLocked()

	r.logger.Info().
		Str("session_id", s.ID).
		Str("identity", s.Identity).
		Int("device_sessions", len(byID)).
		Msg("Session registered.")

	r.mu.Unlock()

	r.broadcastAll(frame)
}

// Unregister removes a session from the registry and from every room it
// joined, then broadcasts the updated presence list. It is idempotent: a
// second call for the same session is a no-op, so abrupt transport loss and
// explicit disconnect can both funnel here.
func (r *Registry) Unregister(s *Session) {
	r.mu.Lock()

	if _, ok := r.sessions[s.ID]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.sessions, s.ID)

	for room := range s.rooms {
		r.leaveRoomLocked(s, room)
	}

	if byID, ok := r.identities[s.Identity]; ok {
		delete(byID, s.ID)
		if len(byID) == 0 {
			delete(r.identities, s.Identity)
		}
	}

	frame := r.presenceFrameLocked()

	r.logger.Info().
		Str("session_id", s.ID).
		Str("identity", s.Identity).
		Msg("Session unregistered.")

	r.mu.Unlock()

	s.closeSend()
	r.broadcastAll(frame)
}

// JoinRoom adds the session to the named room. Joining a room the session is
// already in is a no-op.
func (r *Registry) JoinRoom(s *Session, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; !ok {
		return
	}

	r.joinRoomLocked(s, room)
}

// LeaveRoom removes the session from the named room. Leaving a room the
// session is not in is a no-op.
func (r *Registry) LeaveRoom(s *Session, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveRoomLocked(s, room)
}

func (r *Registry) joinRoomLocked(s *Session, room string) {
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]*Session)
		r.rooms[room] = members
	}
	members[s.ID] = s
	s.rooms[room] = struct{}{}
}

func (r *Registry) leaveRoomLocked(s *Session, room string) {
	if members, ok := r.rooms[room]; ok {
		delete(members, s.ID)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	delete(s.rooms, room)
}

// Broadcast delivers an event to every live session currently joined to the
// room. Delivery is best-effort: a room with no live sessions is a silent
// no-op, and a session whose send queue is full simply misses the event.
func (r *Registry) Broadcast(room string, event string, payload any) {
	frame, err := wire.Encode(event, payload)
	if err != nil {
		r.logger.Error().Err(err).Str("event", event).Msg("Error encoding event for broadcast.")
		return
	}

	r.mu.RLock()
	members, ok := r.rooms[room]
	if !ok || len(members) == 0 {
		r.mu.RUnlock()
		return
	}

	sessions := make([]*Session, 0, len(members))
	for _, s := range members {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		s.enqueue(frame)
	}
}

// Online returns the sorted set of identities with at least one live session.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.onlineLocked()
}

func (r *Registry) onlineLocked() []string {
	online := make([]string, 0, len(r.identities))
	for identity := range r.identities {
		online = append(online, identity)
	}
	sort.Strings(online)
	return online
}

// presenceFrameLocked builds the presence-update frame from the current
// identity table. Building it under the lock ties each frame to exactly one
// connect/disconnect transition.
func (r *Registry) presenceFrameLocked() []byte {
	frame, err := wire.Encode(wire.EventPresenceUpdate, wire.PresencePayload{Online: r.onlineLocked()})
	if err != nil {
		r.logger.Error().Err(err).Msg("Error encoding presence update.")
		return nil
	}
	return frame
}

// broadcastAll delivers a pre-encoded frame to every live session.
func (r *Registry) broadcastAll(frame []byte) {
	if frame == nil {
		return
	}

	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		s.enqueue(frame)
	}
}

// Shutdown closes every live session. Used during graceful server shutdown.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]*Session)
	r.identities = make(map[string]map[string]*Session)
	r.rooms = make(map[string]map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.closeSend()
	}

	r.logger.Info().Int("sessions_closed", len(sessions)).Msg("Registry shutdown complete.")
}
