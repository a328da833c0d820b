package relationship

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"ripple/internal/pkg/errs"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

// memoryStore is an in-memory Store used by the tests. failSecondWrite makes
// UpdatePair apply only the first record and report a partial write, mimicking
// a store without transactional pair writes crashing mid-mutation.
type memoryStore struct {
	mu              sync.Mutex
	records         map[string]*Record
	failSecondWrite bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]*Record)}
}

func (s *memoryStore) Get(ctx context.Context, userID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok {
		return nil, nil
	}
	clone := *rec
	clone.Friends = append([]string(nil), rec.Friends...)
	clone.Sent = append([]string(nil), rec.Sent...)
	clone.Received = append([]string(nil), rec.Received...)
	return &clone, nil
}

func (s *memoryStore) UpdatePair(ctx context.Context, a, b *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[a.UserID] = a
	if s.failSecondWrite {
		return ErrPartialWrite
	}
	s.records[b.UserID] = b
	return nil
}

func mustRecord(t *testing.T, s *Service, userID string) *Record {
	t.Helper()
	rec, cerr := s.Record(context.Background(), userID)
	require.Nil(t, cerr)
	return rec
}

// requireInvariants checks set disjointness and the no-self rule for a record.
func requireInvariants(t *testing.T, rec *Record) {
	t.Helper()

	seen := make(map[string]int)
	for _, id := range rec.Friends {
		require.NotEqual(t, rec.UserID, id)
		seen[id]++
	}
	for _, id := range rec.Sent {
		require.NotEqual(t, rec.UserID, id)
		seen[id]++
	}
	for _, id := range rec.Received {
		require.NotEqual(t, rec.UserID, id)
		seen[id]++
	}
	for id, count := range seen {
		require.Equal(t, 1, count, "identity %s appears in multiple sets of %s", id, rec.UserID)
	}
}

func TestSendRequestCreatesMirroredPending(t *testing.T) {
	svc := NewService(newMemoryStore())

	state, cerr := svc.SendRequest(context.Background(), "alice", "bob")
	require.Nil(t, cerr)
	require.Equal(t, StateRequestSent, state)

	alice := mustRecord(t, svc, "alice")
	bob := mustRecord(t, svc, "bob")

	require.True(t, alice.HasSent("bob"))
	require.True(t, bob.HasReceived("alice"))
	require.False(t, alice.HasFriend("bob"))
	requireInvariants(t, alice)
	requireInvariants(t, bob)
}

func TestSendThenAcceptBecomeFriends(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	_, cerr := svc.SendRequest(ctx, "alice", "bob")
	require.Nil(t, cerr)

	cerr = svc.AcceptRequest(ctx, "bob", "alice")
	require.Nil(t, cerr)

	alice := mustRecord(t, svc, "alice")
	bob := mustRecord(t, svc, "bob")

	require.True(t, alice.HasFriend("bob"))
	require.True(t, bob.HasFriend("alice"))
	require.Empty(t, alice.Sent)
	require.Empty(t, alice.Received)
	require.Empty(t, bob.Sent)
	require.Empty(t, bob.Received)
}

func TestMutualSendCompletesFriendship(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	_, cerr := svc.SendRequest(ctx, "alice", "bob")
	require.Nil(t, cerr)

	// bob answers with his own request instead of an accept
	state, cerr := svc.SendRequest(ctx, "bob", "alice")
	require.Nil(t, cerr)
	require.Equal(t, StateFriends, state)

	alice := mustRecord(t, svc, "alice")
	bob := mustRecord(t, svc, "bob")

	require.True(t, alice.HasFriend("bob"))
	require.True(t, bob.HasFriend("alice"))
	require.Empty(t, alice.Sent)
	require.Empty(t, alice.Received)
	require.Empty(t, bob.Sent)
	require.Empty(t, bob.Received)
}

func TestSendRequestValidation(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	_, cerr := svc.SendRequest(ctx, "alice", "alice")
	require.NotNil(t, cerr)
	require.Equal(t, errs.ErrSelfRelationship, cerr.Code)

	_, cerr = svc.SendRequest(ctx, "alice", "bob")
	require.Nil(t, cerr)

	_, cerr = svc.SendRequest(ctx, "alice", "bob")
	require.NotNil(t, cerr)
	require.Equal(t, errs.ErrRequestAlreadySent, cerr.Code)

	require.Nil(t, svc.AcceptRequest(ctx, "bob", "alice"))

	_, cerr = svc.SendRequest(ctx, "alice", "bob")
	require.NotNil(t, cerr)
	require.Equal(t, errs.ErrAlreadyFriends, cerr.Code)
}

func TestAcceptWithoutRequestFails(t *testing.T) {
	svc := NewService(newMemoryStore())

	cerr := svc.AcceptRequest(context.Background(), "alice", "bob")
	require.NotNil(t, cerr)
	require.Equal(t, errs.ErrRequestNotFound, cerr.Code)
}

func TestCancelOrRejectMissingPairingDoesNotMutate(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	_, cerr := svc.SendRequest(ctx, "alice", "bob")
	require.Nil(t, cerr)

	before := mustRecord(t, svc, "alice")

	// bob never became a friend, so the friend role must fail
	cerr = svc.CancelOrReject(ctx, "alice", "bob", RoleFriend)
	require.NotNil(t, cerr)
	require.Equal(t, errs.ErrNotFriends, cerr.Code)

	// claiming a received request that does not exist must fail too
	cerr = svc.CancelOrReject(ctx, "alice", "bob", RoleReceived)
	require.NotNil(t, cerr)
	require.Equal(t, errs.ErrRequestNotFound, cerr.Code)

	after := mustRecord(t, svc, "alice")
	require.Equal(t, before, after)
}

func TestCancelOrRejectInvalidRole(t *testing.T) {
	svc := NewService(newMemoryStore())

	cerr := svc.CancelOrReject(context.Background(), "alice", "bob", Role("enemy"))
	require.NotNil(t, cerr)
	require.Equal(t, errs.ErrInvalidRole, cerr.Code)
}

func TestCancelSentRemovesBothHalves(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	_, cerr := svc.SendRequest(ctx, "alice", "bob")
	require.Nil(t, cerr)

	require.Nil(t, svc.CancelOrReject(ctx, "alice", "bob", RoleSent))

	alice := mustRecord(t, svc, "alice")
	bob := mustRecord(t, svc, "bob")
	require.Empty(t, alice.Sent)
	require.Empty(t, bob.Received)
}

func TestRejectReceivedRemovesBothHalves(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	_, cerr := svc.SendRequest(ctx, "alice", "bob")
	require.Nil(t, cerr)

	require.Nil(t, svc.CancelOrReject(ctx, "bob", "alice", RoleReceived))

	alice := mustRecord(t, svc, "alice")
	bob := mustRecord(t, svc, "bob")
	require.Empty(t, alice.Sent)
	require.Empty(t, bob.Received)
}

func TestRemoveFriendRemovesBothHalves(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	_, cerr := svc.SendRequest(ctx, "alice", "bob")
	require.Nil(t, cerr)
	require.Nil(t, svc.AcceptRequest(ctx, "bob", "alice"))

	require.Nil(t, svc.CancelOrReject(ctx, "alice", "bob", RoleFriend))

	alice := mustRecord(t, svc, "alice")
	bob := mustRecord(t, svc, "bob")
	require.False(t, alice.HasFriend("bob"))
	require.False(t, bob.HasFriend("alice"))
	require.Equal(t, StateNone, alice.StateWith("bob"))
}

func TestPartialWriteSurfacesIntegrityFault(t *testing.T) {
	store := newMemoryStore()
	store.failSecondWrite = true
	svc := NewService(store)

	_, cerr := svc.SendRequest(context.Background(), "alice", "bob")
	require.NotNil(t, cerr)
	require.Equal(t, errs.ErrRelationshipIntegrity, cerr.Code)
}

func TestConcurrentMutualRequestsStaySymmetric(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		svc.SendRequest(ctx, "alice", "bob")
	}()
	go func() {
		defer wg.Done()
		svc.SendRequest(ctx, "bob", "alice")
	}()
	wg.Wait()

	// whichever request ran second completed the handshake
	alice := mustRecord(t, svc, "alice")
	bob := mustRecord(t, svc, "bob")

	require.True(t, alice.HasFriend("bob"))
	require.True(t, bob.HasFriend("alice"))
	requireInvariants(t, alice)
	requireInvariants(t, bob)
}
