/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application
// error code. The key is the error code (int), and the value contains the user
// message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Group, Message, and Relationship Business Logic Errors
	ErrGroupNotFound:         {Code: ErrGroupNotFound, Message: "Group not found.", Status: http.StatusNotFound},
	ErrNotGroupMember:        {Code: ErrNotGroupMember, Message: "You are not a member of this group.", Status: http.StatusForbidden},
	ErrAlreadyGroupMember:    {Code: ErrAlreadyGroupMember, Message: "User is already a member of this group.", Status: http.StatusBadRequest},
	ErrNotGroupCreator:       {Code: ErrNotGroupCreator, Message: "Only the group creator can do this.", Status: http.StatusForbidden},
	ErrMessageEmpty:          {Code: ErrMessageEmpty, Message: "Message must contain text or an image.", Status: http.StatusBadRequest},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long.", Status: http.StatusBadRequest},
	ErrSelfRelationship:      {Code: ErrSelfRelationship, Message: "You cannot send a friend request to yourself.", Status: http.StatusBadRequest},
	ErrAlreadyFriends:        {Code: ErrAlreadyFriends, Message: "You are already friends with this user.", Status: http.StatusBadRequest},
	ErrRequestAlreadySent:    {Code: ErrRequestAlreadySent, Message: "You have already sent a friend request to this user.", Status: http.StatusBadRequest},
	ErrRequestNotFound:       {Code: ErrRequestNotFound, Message: "No pending friend request with this user.", Status: http.StatusBadRequest},
	ErrNotFriends:            {Code: ErrNotFriends, Message: "This user is not your friend.", Status: http.StatusBadRequest},
	ErrInvalidRole:           {Code: ErrInvalidRole, Message: "Invalid type. Use: sent, received or friend.", Status: http.StatusBadRequest},

	// 3xxx: User and Session Errors
	ErrIdentityRequired: {Code: ErrIdentityRequired, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrUserNotFound:     {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},

	// 5xxx: Internal System Errors
	ErrUnknown:               {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrRelationshipIntegrity: {Code: ErrRelationshipIntegrity, Message: "Relationship state is inconsistent. Please contact support.", Status: http.StatusInternalServerError},
}
