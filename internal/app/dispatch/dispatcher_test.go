package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ripple/internal/app/group"
	"ripple/internal/app/message"
	"ripple/internal/app/wire"
)

type publish struct {
	room  string
	event string
}

// recordingBroadcaster captures every broadcast in order.
type recordingBroadcaster struct {
	published []publish
}

func (r *recordingBroadcaster) Broadcast(room string, event string, payload any) {
	r.published = append(r.published, publish{room: room, event: event})
}

func (r *recordingBroadcaster) rooms(event string) []string {
	var rooms []string
	for _, p := range r.published {
		if p.event == event {
			rooms = append(rooms, p.room)
		}
	}
	return rooms
}

func testGroup(creator string, members ...string) *group.Group {
	return &group.Group{
		ID:      primitive.NewObjectID(),
		Name:    "trio",
		Creator: creator,
		Members: members,
	}
}

func TestDeliverPrivateTargetsRecipientRoom(t *testing.T) {
	rec := &recordingBroadcaster{}
	d := New(rec)

	d.DeliverPrivate(&message.Message{SenderID: "alice", TargetID: "bob", TargetKind: message.TargetUser, Text: "hi"})

	require.Len(t, rec.published, 1)
	assert.Equal(t, wire.UserRoom("bob"), rec.published[0].room)
	assert.Equal(t, wire.EventPrivateMessage, rec.published[0].event)
}

func TestDeliverGroupSkipsSender(t *testing.T) {
	rec := &recordingBroadcaster{}
	d := New(rec)

	g := testGroup("alice", "alice", "bob", "carol")
	d.DeliverGroup(&message.Message{SenderID: "bob", TargetID: g.ID.Hex(), TargetKind: message.TargetGroup, Text: "hi"}, g)

	rooms := rec.rooms(wire.EventGroupMessage)
	assert.ElementsMatch(t, []string{wire.UserRoom("alice"), wire.UserRoom("carol")}, rooms)
	assert.NotContains(t, rooms, wire.UserRoom("bob"))
}

func TestDeliverGroupSingleMemberSenderReachesNobody(t *testing.T) {
	rec := &recordingBroadcaster{}
	d := New(rec)

	g := testGroup("alice", "alice")
	d.DeliverGroup(&message.Message{SenderID: "alice", TargetID: g.ID.Hex(), TargetKind: message.TargetGroup, Text: "hi"}, g)

	assert.Empty(t, rec.published)
}

func TestGroupCreatedReachesAllMembers(t *testing.T) {
	rec := &recordingBroadcaster{}
	d := New(rec)

	g := testGroup("alice", "alice", "bob")
	d.GroupCreated(g)

	assert.ElementsMatch(t,
		[]string{wire.UserRoom("alice"), wire.UserRoom("bob")},
		rec.rooms(wire.EventGroupCreated))
}

func TestMembersAddedSplitsEvents(t *testing.T) {
	rec := &recordingBroadcaster{}
	d := New(rec)

	g := testGroup("alice", "alice", "bob", "carol")
	d.MembersAdded(g, []string{"carol"})

	assert.Equal(t, []string{wire.UserRoom("carol")}, rec.rooms(wire.EventMemberAdded))
	assert.ElementsMatch(t,
		[]string{wire.UserRoom("alice"), wire.UserRoom("bob")},
		rec.rooms(wire.EventMembershipChanged))
}

func TestMemberLeftNotifiesRemainingAndLeaver(t *testing.T) {
	rec := &recordingBroadcaster{}
	d := New(rec)

	// group snapshot after bob already left
	g := testGroup("alice", "alice", "carol")
	d.MemberLeft(g, "bob")

	assert.ElementsMatch(t,
		[]string{wire.UserRoom("alice"), wire.UserRoom("carol")},
		rec.rooms(wire.EventMembershipChanged))
	assert.Equal(t, []string{wire.UserRoom("bob")}, rec.rooms(wire.EventLeftGroup))
}

func TestMemberRemovedNotifiesRemovedAndRemaining(t *testing.T) {
	rec := &recordingBroadcaster{}
	d := New(rec)

	g := testGroup("alice", "alice", "carol")
	d.MemberRemoved(g, "bob")

	assert.Equal(t, []string{wire.UserRoom("bob")}, rec.rooms(wire.EventRemovedFromGroup))
	assert.ElementsMatch(t,
		[]string{wire.UserRoom("alice"), wire.UserRoom("carol")},
		rec.rooms(wire.EventMembershipChanged))
}

func TestGroupDisbandedNotifiesLastMember(t *testing.T) {
	rec := &recordingBroadcaster{}
	d := New(rec)

	d.GroupDisbanded("g1", "alice")

	require.Len(t, rec.published, 1)
	assert.Equal(t, wire.UserRoom("alice"), rec.published[0].room)
	assert.Equal(t, wire.EventGroupDisbanded, rec.published[0].event)
}
