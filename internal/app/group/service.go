/*
Package group manages chat groups.

This file defines the Service, which owns the membership rules: the creator is
always a member, leaving reassigns creatorship when needed, and a group whose
member set becomes empty is deleted. The service mutates persisted state only;
live fan-out of the resulting events is the dispatcher's job and is driven by
the caller after each mutation is durable.
*/
package group

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ripple/internal/pkg/errs"
	"ripple/internal/pkg/logx"
)

// Service applies group membership mutations.
type Service struct {
	store Store

	// structured logger with Service context.
	logger zerolog.Logger
}

// NewService constructs a Service backed by the given store.
func NewService(store Store) *Service {
	serviceLogger := logx.Logger().With().Str("component", "GroupService").Logger()

	return &Service{
		store:  store,
		logger: serviceLogger,
	}
}

// LeaveResult describes the outcome of a Leave call.
type LeaveResult struct {
	// Group is the group after the departure, or nil if it was disbanded.
	Group *Group

	// GroupID is always set, even after a disband.
	GroupID string

	// Disbanded is true when the departing user was the last member.
	Disbanded bool
}

// Create persists a new group. The creator is always included in the member
// set regardless of the supplied list.
func (s *Service) Create(ctx context.Context, creator, name string, members []string) (*Group, *errs.CustomError) {
	if name == "" || len(members) == 0 {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	g := &Group{
		Name:      name,
		Creator:   creator,
		Members:   dedupe(append([]string{creator}, members...)),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Insert(ctx, g); err != nil {
		s.logger.Error().Err(err).Str("creator", creator).Msg("Failed to insert group.")
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	s.logger.Info().
		Str("group_id", g.ID.Hex()).
		Str("creator", creator).
		Int("members", len(g.Members)).
		Msg("Group created.")

	return g, nil
}

// Get returns a group by id.
func (s *Service) Get(ctx context.Context, groupID string) (*Group, *errs.CustomError) {
	g, err := s.store.Get(ctx, groupID)
	if err != nil {
		s.logger.Error().Err(err).Str("group_id", groupID).Msg("Failed to load group.")
		return nil, errs.NewError(errs.ErrUnknown, err)
	}
	if g == nil {
		return nil, errs.NewError(errs.ErrGroupNotFound)
	}
	return g, nil
}

// ListByMember returns every group the user belongs to.
func (s *Service) ListByMember(ctx context.Context, userID string) ([]Group, *errs.CustomError) {
	groups, err := s.store.ListByMember(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list groups.")
		return nil, errs.NewError(errs.ErrUnknown, err)
	}
	return groups, nil
}

// AddMembers adds the given users to the group. Only existing members may add
// new ones. Users already in the group are skipped. It returns the updated
// group and the list of members actually added.
func (s *Service) AddMembers(ctx context.Context, groupID, actor string, memberIDs []string) (*Group, []string, *errs.CustomError) {
	g, cerr := s.Get(ctx, groupID)
	if cerr != nil {
		return nil, nil, cerr
	}

	if !g.HasMember(actor) {
		return nil, nil, errs.NewError(errs.ErrNotGroupMember)
	}

	added := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id == "" || g.HasMember(id) {
			continue
		}
		g.Members = append(g.Members, id)
		added = append(added, id)
	}

	if len(added) == 0 {
		return nil, nil, errs.NewError(errs.ErrAlreadyGroupMember)
	}

	if err := s.store.Update(ctx, g); err != nil {
		s.logger.Error().Err(err).Str("group_id", groupID).Msg("Failed to update group members.")
		return nil, nil, errs.NewError(errs.ErrUnknown, err)
	}

	return g, added, nil
}

// Leave removes the user from the group. A departing creator with remaining
// members hands creatorship to the first remaining member; a group reaching
// zero members is deleted.
func (s *Service) Leave(ctx context.Context, groupID, userID string) (*LeaveResult, *errs.CustomError) {
	g, cerr := s.Get(ctx, groupID)
	if cerr != nil {
		return nil, cerr
	}

	if !g.HasMember(userID) {
		return nil, errs.NewError(errs.ErrNotGroupMember)
	}

	g.Members = withoutMember(g.Members, userID)

	if len(g.Members) == 0 {
		if err := s.store.Delete(ctx, groupID); err != nil {
			s.logger.Error().Err(err).Str("group_id", groupID).Msg("Failed to delete empty group.")
			return nil, errs.NewError(errs.ErrUnknown, err)
		}

		s.logger.Info().Str("group_id", groupID).Msg("Group disbanded (last member left).")

		return &LeaveResult{GroupID: groupID, Disbanded: true}, nil
	}

	if g.Creator == userID {
		g.Creator = g.Members[0]
		s.logger.Info().
			Str("group_id", groupID).
			Str("new_creator", g.Creator).
			Msg("Group creator reassigned.")
	}

	if err := s.store.Update(ctx, g); err != nil {
		s.logger.Error().Err(err).Str("group_id", groupID).Msg("Failed to update group on leave.")
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	return &LeaveResult{Group: g, GroupID: groupID}, nil
}

// RemoveMember removes another member from the group. Only the creator may
// remove members; the creator removes itself via Leave.
func (s *Service) RemoveMember(ctx context.Context, groupID, actor, memberID string) (*Group, *errs.CustomError) {
	g, cerr := s.Get(ctx, groupID)
	if cerr != nil {
		return nil, cerr
	}

	if g.Creator != actor {
		return nil, errs.NewError(errs.ErrNotGroupCreator)
	}
	if actor == memberID {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}
	if !g.HasMember(memberID) {
		return nil, errs.NewError(errs.ErrNotGroupMember)
	}

	g.Members = withoutMember(g.Members, memberID)

	if err := s.store.Update(ctx, g); err != nil {
		s.logger.Error().Err(err).Str("group_id", groupID).Msg("Failed to update group on member removal.")
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	return g, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
