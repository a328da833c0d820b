/*
Package message defines persisted chat messages and their store.

A message is immutable once persisted; the fan-out dispatcher reads it exactly
once, after the write has been acknowledged as durable.
*/
package message

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetKind distinguishes direct and group messages.
type TargetKind string

const (
	TargetUser  TargetKind = "user"
	TargetGroup TargetKind = "group"
)

// MaxTextBytes is the maximum allowed size of the message text.
const MaxTextBytes = 5000

// Message is one persisted chat message. Body fields are both optional but
// at least one must be set. ImageRef is an opaque reference into external
// media storage.
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID   string             `bson:"senderId" json:"senderId"`
	TargetID   string             `bson:"targetId" json:"targetId"`
	TargetKind TargetKind         `bson:"targetKind" json:"targetKind"`
	Text       string             `bson:"text,omitempty" json:"text,omitempty"`
	ImageRef   string             `bson:"imageRef,omitempty" json:"imageRef,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
