/*
Package group manages chat groups: creation, membership changes, and the
creator-reassignment rules that apply when members leave.
*/
package group

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group represents a chat group. The creator must remain a member while the
// group has other members, unless reassigned by their own departure.
type Group struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Creator   string             `bson:"creator" json:"creator"`
	Members   []string           `bson:"members" json:"members"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// HasMember reports whether the user belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// withoutMember returns the member list minus the given user.
func withoutMember(members []string, userID string) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		if m != userID {
			out = append(out, m)
		}
	}
	return out
}
