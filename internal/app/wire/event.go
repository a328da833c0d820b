/*
Package wire defines the logical event vocabulary of the real-time channel.

It contains the event names exchanged with clients, the JSON envelope every
event travels in, and the internal room naming scheme (one room per user,
one room per group). Room names are never exposed to clients.
*/
package wire

import "encoding/json"

// Outbound event names (server to client).
const (
	// EventPresenceUpdate carries the full list of online identities.
	EventPresenceUpdate = "presence-update"

	// EventPrivateMessage carries a newly persisted direct message.
	EventPrivateMessage = "private-message"

	// EventGroupMessage carries a newly persisted group message plus a group snapshot.
	EventGroupMessage = "group-message"

	// EventGroupCreated informs every initial member about a new group.
	EventGroupCreated = "group-created"

	// EventMemberAdded informs a user it was added to a group.
	EventMemberAdded = "member-added"

	// EventMembershipChanged informs existing members that the member list changed.
	EventMembershipChanged = "membership-changed"

	// EventRemovedFromGroup informs a user it was removed from a group.
	EventRemovedFromGroup = "removed-from-group"

	// EventLeftGroup confirms to the departing user that it left a group.
	EventLeftGroup = "left-group"

	// EventGroupDisbanded informs the last departing member that the group was deleted.
	EventGroupDisbanded = "group-disbanded"
)

// Inbound event names (client to server).
const (
	// EventJoinGroup subscribes the session to a group's live room.
	EventJoinGroup = "join-group"

	// EventLeaveGroup unsubscribes the session from a group's live room.
	EventLeaveGroup = "leave-group"
)

// Envelope is the JSON frame every real-time event travels in.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode marshals the payload and wraps it in an Envelope, returning the
// serialized frame ready for transport.
func Encode(event string, payload any) ([]byte, error) {
	var raw json.RawMessage

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}

	return json.Marshal(Envelope{Event: event, Payload: raw})
}

// PresencePayload is the payload of a presence-update event.
type PresencePayload struct {
	Online []string `json:"online"`
}

// GroupRefPayload references a group by id, used by join/leave and
// left-group/group-disbanded events.
type GroupRefPayload struct {
	GroupID string `json:"groupId"`
}

// UserRoom returns the personal room name for a user identity.
func UserRoom(userID string) string {
	return "user_" + userID
}

// GroupRoom returns the broadcast room name for a group.
func GroupRoom(groupID string) string {
	return "group_" + groupID
}
