/*
Package relationship maintains the bidirectional friendship graph.

This file defines the Service, the only mutator of relationship records. Every
operation loads both participants' records (creating them on demand), applies
the state transition to both halves in memory, and writes the pair through the
store as one atomic unit. Operations on the same unordered pair are serialized
through a striped pair lock, so concurrent requests from both sides of a pair
cannot interleave and break the symmetry invariant.
*/
package relationship

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"ripple/internal/pkg/errs"
	"ripple/internal/pkg/logx"
)

// pairLockCount is the number of stripes in the pair lock table.
const pairLockCount = 64

// Service applies relationship state transitions with symmetry guarantees.
type Service struct {
	store Store

	// locks serializes mutations per unordered pair.
	locks [pairLockCount]sync.Mutex

	// structured logger with Service context.
	logger zerolog.Logger
}

// NewService constructs a Service backed by the given store.
func NewService(store Store) *Service {
	serviceLogger := logx.Logger().With().Str("component", "RelationshipService").Logger()

	return &Service{
		store:  store,
		logger: serviceLogger,
	}
}

// SendRequest records a pending friend request from one user to another and
// returns the resulting pair state. If the target had already requested the
// sender, the call instead completes an immediate mutual acceptance and
// returns StateFriends.
func (s *Service) SendRequest(ctx context.Context, from, to string) (State, *errs.CustomError) {
	if from == to {
		return StateNone, errs.NewError(errs.ErrSelfRelationship)
	}

	unlock := s.lockPair(from, to)
	defer unlock()

	sender, target, err := s.loadPair(ctx, from, to)
	if err != nil {
		return StateNone, err
	}

	switch {
	case sender.HasFriend(to):
		return StateFriends, errs.NewError(errs.ErrAlreadyFriends)

	case sender.HasSent(to):
		return StateRequestSent, errs.NewError(errs.ErrRequestAlreadySent)

	case sender.HasReceived(to):
		// the target already requested the sender: complete the handshake
		sender.Received = remove(sender.Received, to)
		sender.Friends = add(sender.Friends, to)
		target.Sent = remove(target.Sent, from)
		target.Friends = add(target.Friends, from)

		if err := s.writePair(ctx, sender, target); err != nil {
			return StateNone, err
		}
		return StateFriends, nil

	default:
		sender.Sent = add(sender.Sent, to)
		target.Received = add(target.Received, from)

		if err := s.writePair(ctx, sender, target); err != nil {
			return StateNone, err
		}
		return StateRequestSent, nil
	}
}

// AcceptRequest turns a pending request from the given requester into mutual
// friendship. It fails without mutating anything if no such request exists.
func (s *Service) AcceptRequest(ctx context.Context, userID, requester string) *errs.CustomError {
	if userID == requester {
		return errs.NewError(errs.ErrSelfRelationship)
	}

	unlock := s.lockPair(userID, requester)
	defer unlock()

	user, peer, err := s.loadPair(ctx, userID, requester)
	if err != nil {
		return err
	}

	if !user.HasReceived(requester) {
		return errs.NewError(errs.ErrRequestNotFound)
	}

	user.Received = remove(user.Received, requester)
	user.Friends = add(user.Friends, requester)
	peer.Sent = remove(peer.Sent, userID)
	peer.Friends = add(peer.Friends, userID)

	return s.writePair(ctx, user, peer)
}

// CancelOrReject removes a pairing from the two mirrored sets matching the
// claimed role: a sent request (cancel), a received request (reject), or an
// existing friendship (remove). It fails without mutating anything if the
// pairing is not present in the expected sets.
func (s *Service) CancelOrReject(ctx context.Context, userID, peerID string, role Role) *errs.CustomError {
	if !role.Valid() {
		return errs.NewError(errs.ErrInvalidRole)
	}
	if userID == peerID {
		return errs.NewError(errs.ErrSelfRelationship)
	}

	unlock := s.lockPair(userID, peerID)
	defer unlock()

	user, peer, err := s.loadPair(ctx, userID, peerID)
	if err != nil {
		return err
	}

	switch role {
	case RoleSent:
		if !user.HasSent(peerID) {
			return errs.NewError(errs.ErrRequestNotFound)
		}
		user.Sent = remove(user.Sent, peerID)
		peer.Received = remove(peer.Received, userID)

	case RoleReceived:
		if !user.HasReceived(peerID) {
			return errs.NewError(errs.ErrRequestNotFound)
		}
		user.Received = remove(user.Received, peerID)
		peer.Sent = remove(peer.Sent, userID)

	case RoleFriend:
		if !user.HasFriend(peerID) {
			return errs.NewError(errs.ErrNotFriends)
		}
		user.Friends = remove(user.Friends, peerID)
		peer.Friends = remove(peer.Friends, userID)
	}

	return s.writePair(ctx, user, peer)
}

// Record returns the user's relationship record, creating an empty view for
// users without one. The returned record is a derived read; callers must not
// mutate it.
func (s *Service) Record(ctx context.Context, userID string) (*Record, *errs.CustomError) {
	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to load relationship record.")
		return nil, errs.NewError(errs.ErrUnknown, err)
	}
	if rec == nil {
		rec = NewRecord(userID)
	}
	return rec, nil
}

// loadPair fetches both records, creating empty ones on demand.
func (s *Service) loadPair(ctx context.Context, a, b string) (*Record, *Record, *errs.CustomError) {
	recA, err := s.store.Get(ctx, a)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", a).Msg("Failed to load relationship record.")
		return nil, nil, errs.NewError(errs.ErrUnknown, err)
	}
	if recA == nil {
		recA = NewRecord(a)
	}

	recB, err := s.store.Get(ctx, b)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", b).Msg("Failed to load relationship record.")
		return nil, nil, errs.NewError(errs.ErrUnknown, err)
	}
	if recB == nil {
		recB = NewRecord(b)
	}

	return recA, recB, nil
}

// writePair persists both halves of the mutation. A partial write is the one
// failure this component must never swallow: it leaves the graph asymmetric
// and is surfaced as a fatal integrity fault requiring reconciliation.
func (s *Service) writePair(ctx context.Context, a, b *Record) *errs.CustomError {
	err := s.store.UpdatePair(ctx, a, b)
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrPartialWrite) {
		s.logger.Error().Err(err).
			Str("user_a", a.UserID).
			Str("user_b", b.UserID).
			Msg("INTEGRITY FAULT: mirrored relationship write applied only one half. Manual reconciliation required.")
		return errs.NewError(errs.ErrRelationshipIntegrity)
	}

	s.logger.Error().Err(err).
		Str("user_a", a.UserID).
		Str("user_b", b.UserID).
		Msg("Failed to persist relationship pair.")
	return errs.NewError(errs.ErrUnknown, err)
}

// lockPair acquires the stripe lock for the unordered pair and returns the
// release function. The stripe index is derived from the sorted pair so both
// orderings of the same pair contend on the same lock.
func (s *Service) lockPair(a, b string) func() {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}

	h := fnv.New32a()
	h.Write([]byte(lo))
	h.Write([]byte{0})
	h.Write([]byte(hi))
	idx := h.Sum32() % pairLockCount

	s.locks[idx].Lock()
	return s.locks[idx].Unlock
}
