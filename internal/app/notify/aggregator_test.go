package notify

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func privateEvent(id, from string) Event {
	return Event{ID: id, Kind: KindPrivate, SourceUser: from, Body: "hi", CreatedAt: time.Now().UTC()}
}

func groupEvent(id, from, groupID string) Event {
	return Event{ID: id, Kind: KindGroup, SourceUser: from, GroupID: groupID, Body: "hi", CreatedAt: time.Now().UTC()}
}

func TestObserveDisplaysFirstEvent(t *testing.T) {
	a := NewAggregator(0)

	require.True(t, a.Observe(privateEvent("m1", "bob")))

	active := a.Active()
	require.NotNil(t, active)
	assert.Equal(t, "m1", active.ID)
	assert.Equal(t, 0, a.QueuedCount())
	assert.Equal(t, 1, a.UnreadCount(KindPrivate, "bob"))
}

func TestDuplicateIDAdmittedOnce(t *testing.T) {
	a := NewAggregator(0)

	require.True(t, a.Observe(privateEvent("m1", "bob")))
	require.False(t, a.Observe(privateEvent("m1", "bob")))

	assert.Equal(t, 1, a.UnreadCount(KindPrivate, "bob"))
	assert.Equal(t, 0, a.QueuedCount())
}

func TestReplayAfterRetireStaysDropped(t *testing.T) {
	a := NewAggregator(0)

	require.True(t, a.Observe(privateEvent("m1", "bob")))
	a.Dismiss()

	// reconnect replay of an already-shown notification
	require.False(t, a.Observe(privateEvent("m1", "bob")))
	assert.Nil(t, a.Active())
}

func TestSingleVisibleStrictFIFO(t *testing.T) {
	a := NewAggregator(0)

	for i := 1; i <= 3; i++ {
		require.True(t, a.Observe(privateEvent(fmt.Sprintf("m%d", i), "bob")))
	}

	require.Equal(t, "m1", a.Active().ID)
	assert.Equal(t, 2, a.QueuedCount())

	a.Dismiss()
	require.Equal(t, "m2", a.Active().ID)

	a.DisplayTimeout()
	require.Equal(t, "m3", a.Active().ID)

	a.Dismiss()
	assert.Nil(t, a.Active())
	assert.Equal(t, 0, a.QueuedCount())
}

func TestDismissWithNothingVisibleIsNoop(t *testing.T) {
	a := NewAggregator(0)
	a.Dismiss()
	assert.Nil(t, a.Active())
}

func TestViewingConversationSuppresses(t *testing.T) {
	a := NewAggregator(0)
	a.OpenConversation(KindPrivate, "bob")

	require.False(t, a.Observe(privateEvent("m1", "bob")))

	assert.Nil(t, a.Active())
	assert.Equal(t, 0, a.UnreadCount(KindPrivate, "bob"))

	// a different chat is not suppressed
	require.True(t, a.Observe(privateEvent("m2", "carol")))
	assert.Equal(t, 1, a.UnreadCount(KindPrivate, "carol"))
}

func TestSuppressionLiftsOnClose(t *testing.T) {
	a := NewAggregator(0)
	a.OpenConversation(KindPrivate, "bob")
	a.CloseConversation()

	require.True(t, a.Observe(privateEvent("m1", "bob")))
	assert.Equal(t, 1, a.UnreadCount(KindPrivate, "bob"))
}

func TestOpenConversationClearsUnreadAndQueued(t *testing.T) {
	a := NewAggregator(0)

	require.True(t, a.Observe(privateEvent("m1", "bob")))
	require.True(t, a.Observe(privateEvent("m2", "bob")))
	require.True(t, a.Observe(privateEvent("m3", "carol")))
	require.Equal(t, 2, a.UnreadCount(KindPrivate, "bob"))

	a.OpenConversation(KindPrivate, "bob")

	assert.Equal(t, 0, a.UnreadCount(KindPrivate, "bob"))
	assert.Equal(t, 1, a.UnreadCount(KindPrivate, "carol"))

	// bob's displayed notification was cleared, carol's is promoted
	active := a.Active()
	require.NotNil(t, active)
	assert.Equal(t, "m3", active.ID)
	assert.Equal(t, 0, a.QueuedCount())
}

func TestGroupAndPrivateCountersAreSeparate(t *testing.T) {
	a := NewAggregator(0)

	require.True(t, a.Observe(groupEvent("m1", "bob", "g1")))
	require.True(t, a.Observe(privateEvent("m2", "bob")))

	assert.Equal(t, 1, a.UnreadCount(KindGroup, "g1"))
	assert.Equal(t, 1, a.UnreadCount(KindPrivate, "bob"))
}

func TestViewingGroupSuppressesOnlyThatGroup(t *testing.T) {
	a := NewAggregator(0)
	a.OpenConversation(KindGroup, "g1")

	require.False(t, a.Observe(groupEvent("m1", "bob", "g1")))
	require.True(t, a.Observe(groupEvent("m2", "bob", "g2")))
	// a private message from a group member is a different conversation
	require.True(t, a.Observe(privateEvent("m3", "bob")))
}

func TestTimerRetiresActiveNotification(t *testing.T) {
	a := NewAggregator(20 * time.Millisecond)

	require.True(t, a.Observe(privateEvent("m1", "bob")))
	require.True(t, a.Observe(privateEvent("m2", "bob")))

	require.Eventually(t, func() bool {
		active := a.Active()
		return active != nil && active.ID == "m2"
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return a.Active() == nil
	}, time.Second, 5*time.Millisecond)
}
