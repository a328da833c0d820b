/*
Package errs provides custom error types and application-level error code constants.

The error codes identify specific business or system errors both internally
within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Group, Message, and Relationship Business Logic Errors
const (
	// ErrGroupNotFound indicates that the referenced group does not exist.
	ErrGroupNotFound = 2101

	// ErrNotGroupMember indicates that the acting user is not a member of the group.
	ErrNotGroupMember = 2102

	// ErrAlreadyGroupMember indicates that the user being added already belongs to the group.
	ErrAlreadyGroupMember = 2103

	// ErrNotGroupCreator indicates an operation reserved for the group creator.
	ErrNotGroupCreator = 2104

	// ErrMessageEmpty indicates a message carrying neither text nor an image reference.
	ErrMessageEmpty = 2201

	// ErrMessageContentTooLong indicates that the message text exceeded the maximum length limit.
	ErrMessageContentTooLong = 2202

	// ErrSelfRelationship indicates a relationship operation targeting the acting user itself.
	ErrSelfRelationship = 2301

	// ErrAlreadyFriends indicates a friend request towards an existing friend.
	ErrAlreadyFriends = 2302

	// ErrRequestAlreadySent indicates a duplicate outgoing friend request.
	ErrRequestAlreadySent = 2303

	// ErrRequestNotFound indicates that the claimed pending request does not exist.
	ErrRequestNotFound = 2304

	// ErrNotFriends indicates a friend removal between users who are not friends.
	ErrNotFriends = 2305

	// ErrInvalidRole indicates an unrecognized relationship role in a cancel/reject call.
	ErrInvalidRole = 2306
)

// 3xxx: User and Session Errors
const (
	// ErrIdentityRequired indicates a request arriving without a validated user identity.
	ErrIdentityRequired = 3001

	// ErrUserNotFound indicates that the referenced user does not exist.
	ErrUserNotFound = 3002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrRelationshipIntegrity indicates that a mirrored relationship write left the
	// graph asymmetric. This is a fatal integrity fault requiring reconciliation.
	ErrRelationshipIntegrity = 5001
)
