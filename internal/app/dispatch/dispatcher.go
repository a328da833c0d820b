/*
Package dispatch routes persisted messages and group changes to the live
sessions that should see them.

The Dispatcher decides which rooms an event targets and publishes through the
registry's broadcast mechanism. Direct messages go to the recipient's personal
room. Group messages go to every member's personal room except the sender's:
the sender already holds the message from its own send confirmation and must
not double-count it as a notification. Group mutation events use the same
per-member personal rooms, so a member that never subscribed to the group's
live room still learns about the change.

Callers invoke the dispatcher only after the corresponding write is durable,
and sequentially per sender, which is what keeps events in persistence order
within a (sender, room) pair.
*/
package dispatch

import (
	"github.com/rs/zerolog"

	"ripple/internal/app/group"
	"ripple/internal/app/message"
	"ripple/internal/app/wire"
	"ripple/internal/pkg/logx"
)

// Broadcaster is the room broadcast mechanism the dispatcher publishes to.
// *registry.Registry satisfies it.
type Broadcaster interface {
	Broadcast(room string, event string, payload any)
}

// GroupMessagePayload is the payload of a group-message event: the message
// plus a snapshot of the group at send time.
type GroupMessagePayload struct {
	Message *message.Message `json:"message"`
	Group   *group.Group     `json:"group"`
}

// Dispatcher fans persisted events out to live recipient rooms.
type Dispatcher struct {
	broadcaster Broadcaster

	// structured logger with Dispatcher context.
	logger zerolog.Logger
}

// New constructs a Dispatcher publishing through the given broadcaster.
func New(b Broadcaster) *Dispatcher {
	dispatcherLogger := logx.Logger().With().Str("component", "Dispatcher").Logger()

	return &Dispatcher{
		broadcaster: b,
		logger:      dispatcherLogger,
	}
}

// DeliverPrivate publishes a persisted direct message to the recipient's
// personal room. An offline recipient simply misses the live event and
// resynchronizes from persisted state on reconnect.
func (d *Dispatcher) DeliverPrivate(m *message.Message) {
	d.broadcaster.Broadcast(wire.UserRoom(m.TargetID), wire.EventPrivateMessage, m)
}

// DeliverGroup publishes a persisted group message to every member's personal
// room except the sender's.
func (d *Dispatcher) DeliverGroup(m *message.Message, g *group.Group) {
	payload := GroupMessagePayload{Message: m, Group: g}

	for _, member := range g.Members {
		if member == m.SenderID {
			continue
		}
		d.broadcaster.Broadcast(wire.UserRoom(member), wire.EventGroupMessage, payload)
	}
}

// GroupCreated informs every initial member about the new group.
func (d *Dispatcher) GroupCreated(g *group.Group) {
	for _, member := range g.Members {
		d.broadcaster.Broadcast(wire.UserRoom(member), wire.EventGroupCreated, g)
	}
}

// MembersAdded informs the newly added users they joined and the rest of the
// group that the member list changed.
func (d *Dispatcher) MembersAdded(g *group.Group, added []string) {
	newMembers := make(map[string]struct{}, len(added))
	for _, id := range added {
		newMembers[id] = struct{}{}
		d.broadcaster.Broadcast(wire.UserRoom(id), wire.EventMemberAdded, g)
	}

	for _, member := range g.Members {
		if _, ok := newMembers[member]; ok {
			continue
		}
		d.broadcaster.Broadcast(wire.UserRoom(member), wire.EventMembershipChanged, g)
	}
}

// MemberLeft confirms the departure to the leaver and informs the remaining
// members that the member list changed.
func (d *Dispatcher) MemberLeft(g *group.Group, leaver string) {
	for _, member := range g.Members {
		d.broadcaster.Broadcast(wire.UserRoom(member), wire.EventMembershipChanged, g)
	}

	d.broadcaster.Broadcast(wire.UserRoom(leaver), wire.EventLeftGroup, wire.GroupRefPayload{GroupID: g.ID.Hex()})
}

// MemberRemoved informs the removed user and the remaining members.
func (d *Dispatcher) MemberRemoved(g *group.Group, removed string) {
	d.broadcaster.Broadcast(wire.UserRoom(removed), wire.EventRemovedFromGroup, g)

	for _, member := range g.Members {
		d.broadcaster.Broadcast(wire.UserRoom(member), wire.EventMembershipChanged, g)
	}
}

// GroupDisbanded informs the departing last member that the group is gone.
func (d *Dispatcher) GroupDisbanded(groupID, lastMember string) {
	d.broadcaster.Broadcast(wire.UserRoom(lastMember), wire.EventGroupDisbanded, wire.GroupRefPayload{GroupID: groupID})
}
