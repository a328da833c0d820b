package group

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

// memoryStore is an in-memory Store keyed by hex group id.
type memoryStore struct {
	groups map[string]*Group
}

func newMemoryStore() *memoryStore {
	return &memoryStore{groups: make(map[string]*Group)}
}

func (s *memoryStore) Insert(ctx context.Context, g *Group) error {
	g.ID = primitive.NewObjectID()
	clone := *g
	s.groups[g.ID.Hex()] = &clone
	return nil
}

func (s *memoryStore) Get(ctx context.Context, groupID string) (*Group, error) {
	g, ok := s.groups[groupID]
	if !ok {
		return nil, nil
	}
	clone := *g
	clone.Members = append([]string(nil), g.Members...)
	return &clone, nil
}

func (s *memoryStore) Update(ctx context.Context, g *Group) error {
	clone := *g
	s.groups[g.ID.Hex()] = &clone
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, groupID string) error {
	delete(s.groups, groupID)
	return nil
}

func (s *memoryStore) ListByMember(ctx context.Context, userID string) ([]Group, error) {
	var out []Group
	for _, g := range s.groups {
		if g.HasMember(userID) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func mustCreate(t *testing.T, svc *Service, creator string, members ...string) *Group {
	t.Helper()
	g, cerr := svc.Create(context.Background(), creator, "trio", members)
	require.Nil(t, cerr)
	return g
}

func TestCreateAlwaysIncludesCreator(t *testing.T) {
	svc := NewService(newMemoryStore())

	g := mustCreate(t, svc, "alice", "bob", "bob", "alice")

	assert.Equal(t, "alice", g.Creator)
	assert.ElementsMatch(t, []string{"alice", "bob"}, g.Members)
	assert.False(t, g.ID.IsZero())
}

func TestCreateRequiresNameAndMembers(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	_, cerr := svc.Create(ctx, "alice", "", []string{"bob"})
	require.NotNil(t, cerr)

	_, cerr = svc.Create(ctx, "alice", "trio", nil)
	require.NotNil(t, cerr)
}

func TestAddMembersSkipsExisting(t *testing.T) {
	svc := NewService(newMemoryStore())
	g := mustCreate(t, svc, "alice", "bob")

	updated, added, cerr := svc.AddMembers(context.Background(), g.ID.Hex(), "bob", []string{"bob", "carol", ""})
	require.Nil(t, cerr)

	assert.Equal(t, []string{"carol"}, added)
	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, updated.Members)
}

func TestAddMembersRejectsOutsiderAndNoopAdds(t *testing.T) {
	svc := NewService(newMemoryStore())
	g := mustCreate(t, svc, "alice", "bob")
	ctx := context.Background()

	_, _, cerr := svc.AddMembers(ctx, g.ID.Hex(), "mallory", []string{"carol"})
	require.NotNil(t, cerr)

	_, _, cerr = svc.AddMembers(ctx, g.ID.Hex(), "alice", []string{"bob"})
	require.NotNil(t, cerr)
}

func TestLeaveReassignsCreator(t *testing.T) {
	svc := NewService(newMemoryStore())
	g := mustCreate(t, svc, "alice", "bob", "carol")
	ctx := context.Background()

	res, cerr := svc.Leave(ctx, g.ID.Hex(), "alice")
	require.Nil(t, cerr)

	require.False(t, res.Disbanded)
	assert.NotEqual(t, "alice", res.Group.Creator)
	assert.Contains(t, res.Group.Members, res.Group.Creator)
	assert.NotContains(t, res.Group.Members, "alice")
}

func TestLeaveLastMemberDisbands(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)
	g := mustCreate(t, svc, "alice", "alice")
	ctx := context.Background()

	res, cerr := svc.Leave(ctx, g.ID.Hex(), "alice")
	require.Nil(t, cerr)

	assert.True(t, res.Disbanded)
	assert.Nil(t, res.Group)
	assert.Equal(t, g.ID.Hex(), res.GroupID)

	_, cerr = svc.Get(ctx, g.ID.Hex())
	require.NotNil(t, cerr)
}

func TestLeaveRequiresMembership(t *testing.T) {
	svc := NewService(newMemoryStore())
	g := mustCreate(t, svc, "alice", "bob")

	_, cerr := svc.Leave(context.Background(), g.ID.Hex(), "mallory")
	require.NotNil(t, cerr)
}

func TestRemoveMemberCreatorOnly(t *testing.T) {
	svc := NewService(newMemoryStore())
	g := mustCreate(t, svc, "alice", "bob", "carol")
	ctx := context.Background()

	_, cerr := svc.RemoveMember(ctx, g.ID.Hex(), "bob", "carol")
	require.NotNil(t, cerr)

	updated, cerr := svc.RemoveMember(ctx, g.ID.Hex(), "alice", "carol")
	require.Nil(t, cerr)
	assert.ElementsMatch(t, []string{"alice", "bob"}, updated.Members)
}

func TestRemoveMemberRejectsSelfAndOutsider(t *testing.T) {
	svc := NewService(newMemoryStore())
	g := mustCreate(t, svc, "alice", "bob")
	ctx := context.Background()

	_, cerr := svc.RemoveMember(ctx, g.ID.Hex(), "alice", "alice")
	require.NotNil(t, cerr)

	_, cerr = svc.RemoveMember(ctx, g.ID.Hex(), "alice", "mallory")
	require.NotNil(t, cerr)
}

func TestListByMember(t *testing.T) {
	svc := NewService(newMemoryStore())
	mustCreate(t, svc, "alice", "bob")
	mustCreate(t, svc, "carol", "dave")

	groups, cerr := svc.ListByMember(context.Background(), "bob")
	require.Nil(t, cerr)
	require.Len(t, groups, 1)
	assert.Equal(t, "trio", groups[0].Name)
}
