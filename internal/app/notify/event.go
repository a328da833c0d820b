/*
Package notify aggregates inbound real-time events into a deduplicated,
rate-limited notification stream for one viewing user.
*/
package notify

import (
	"time"

	"ripple/internal/app/dispatch"
	"ripple/internal/app/group"
	"ripple/internal/app/message"
)

// Kind distinguishes private and group notifications.
type Kind string

const (
	KindPrivate Kind = "private"
	KindGroup   Kind = "group"
)

// Conversation identifies the chat an event belongs to: the peer user for a
// private chat, the group for a group chat. Unread counters are keyed by it.
type Conversation struct {
	Kind Kind
	ID   string
}

// Event is one ephemeral, viewer-scoped notification candidate. ID is derived
// from the source message id and is the dedup key.
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	SourceUser string    `json:"sourceUser"`
	GroupID    string    `json:"groupId,omitempty"`
	Body       string    `json:"body,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Conversation returns the conversation this event belongs to.
func (e Event) Conversation() Conversation {
	if e.Kind == KindGroup {
		return Conversation{Kind: KindGroup, ID: e.GroupID}
	}
	return Conversation{Kind: KindPrivate, ID: e.SourceUser}
}

// FromPrivateMessage builds a notification event from a private-message payload.
func FromPrivateMessage(m *message.Message) Event {
	return Event{
		ID:         m.ID.Hex(),
		Kind:       KindPrivate,
		SourceUser: m.SenderID,
		Body:       m.Text,
		CreatedAt:  m.CreatedAt,
	}
}

// FromGroupMessage builds a notification event from a group-message payload.
func FromGroupMessage(m *message.Message, g *group.Group) Event {
	return Event{
		ID:         m.ID.Hex(),
		Kind:       KindGroup,
		SourceUser: m.SenderID,
		GroupID:    g.ID.Hex(),
		Body:       m.Text,
		CreatedAt:  m.CreatedAt,
	}
}

// FromGroupMessagePayload builds a notification event from the wire payload
// carried by a group-message event.
func FromGroupMessagePayload(p *dispatch.GroupMessagePayload) Event {
	return FromGroupMessage(p.Message, p.Group)
}
