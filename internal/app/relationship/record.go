/*
Package relationship maintains the bidirectional friendship graph.

This file defines the per-user Record, the mirrored document holding a user's
friends and pending requests, and the derived pair state. A record is one half
of each logical graph edge: for any two users A and B, A ∈ B.Friends iff
B ∈ A.Friends, and A ∈ B.Received iff B ∈ A.Sent. The three sets of a record
are pairwise disjoint and never contain the record's own user.
*/
package relationship

// Role names the position of a peer inside a record, used by cancel/reject
// operations. The values match the client-facing API.
type Role string

const (
	RoleSent     Role = "sent"
	RoleReceived Role = "received"
	RoleFriend   Role = "friend"
)

// Valid reports whether the role is one of the three recognized values.
func (r Role) Valid() bool {
	return r == RoleSent || r == RoleReceived || r == RoleFriend
}

// State is the relationship state between an ordered pair of users, derived
// from the first user's record relative to the second.
type State int

const (
	// StateNone means no edge exists between the pair.
	StateNone State = iota

	// StateRequestSent means this user has a pending request to the peer.
	StateRequestSent

	// StateRequestReceived means the peer has a pending request to this user.
	StateRequestReceived

	// StateFriends means the pair are friends.
	StateFriends
)

// Record is a user's half of the mirrored relationship store. Sets are stored
// as arrays in the document store; mutation goes through the Service only.
type Record struct {
	UserID   string   `bson:"userId" json:"userId"`
	Friends  []string `bson:"friends" json:"friends"`
	Sent     []string `bson:"sentRequests" json:"sentRequests"`
	Received []string `bson:"receivedRequests" json:"receivedRequests"`
}

// NewRecord returns an empty record for the given user. Records are created
// lazily on a user's first relationship action.
func NewRecord(userID string) *Record {
	return &Record{
		UserID:   userID,
		Friends:  []string{},
		Sent:     []string{},
		Received: []string{},
	}
}

// StateWith derives the pair state relative to the given peer.
func (r *Record) StateWith(peer string) State {
	switch {
	case contains(r.Friends, peer):
		return StateFriends
	case contains(r.Sent, peer):
		return StateRequestSent
	case contains(r.Received, peer):
		return StateRequestReceived
	default:
		return StateNone
	}
}

// HasFriend reports whether the peer is in the friends set.
func (r *Record) HasFriend(peer string) bool { return contains(r.Friends, peer) }

// HasSent reports whether a request to the peer is pending.
func (r *Record) HasSent(peer string) bool { return contains(r.Sent, peer) }

// HasReceived reports whether a request from the peer is pending.
func (r *Record) HasReceived(peer string) bool { return contains(r.Received, peer) }

func contains(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

func add(set []string, id string) []string {
	if contains(set, id) {
		return set
	}
	return append(set, id)
}

func remove(set []string, id string) []string {
	out := set[:0]
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
