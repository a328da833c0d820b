/*
Package handler provides the HTTP handlers and routing setup for the server.

This file contains the handlers for the friendship graph: sending, accepting,
and cancelling/rejecting requests, plus the read views over a user's record.
*/
package handler

import (
	"net/http"

	"ripple/internal/app/relationship"
	"ripple/internal/pkg/errs"
	"ripple/internal/pkg/req"
	"ripple/internal/pkg/resp"
)

type friendRequestInput struct {
	UserID string `json:"userId"`
}

type cancelFriendInput struct {
	UserID string `json:"userId"`
	Type   string `json:"type"`
}

type relationshipStatus struct {
	Status string `json:"status"`
}

// statusName maps a pair state to the client-facing status string.
func statusName(state relationship.State) string {
	switch state {
	case relationship.StateFriends:
		return "friends"
	case relationship.StateRequestSent, relationship.StateRequestReceived:
		return "pending"
	default:
		return "not_friends"
	}
}

// HandleSendFriendRequest records a pending friend request, or completes an
// immediate mutual acceptance when the target had already requested the caller.
func HandleSendFriendRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromRequest(r)
		if identity == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrIdentityRequired))
			return
		}

		var input friendRequestInput
		if err := req.BindJSON(r, &input); err != nil {
			resp.RespondError(w, r, err)
			return
		}
		if input.UserID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		state, cerr := deps.Relationships.SendRequest(r.Context(), identity, input.UserID)
		if cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}

		resp.RespondSuccess(w, r, relationshipStatus{Status: statusName(state)})
	}
}

// HandleAcceptFriendRequest turns a pending incoming request into friendship.
func HandleAcceptFriendRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromRequest(r)
		if identity == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrIdentityRequired))
			return
		}

		var input friendRequestInput
		if err := req.BindJSON(r, &input); err != nil {
			resp.RespondError(w, r, err)
			return
		}
		if input.UserID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if cerr := deps.Relationships.AcceptRequest(r.Context(), identity, input.UserID); cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}

		resp.RespondSuccess(w, r, relationshipStatus{Status: "friends"})
	}
}

// HandleCancelFriendRequest cancels a sent request, rejects a received one, or
// removes a friend, depending on the claimed type.
func HandleCancelFriendRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromRequest(r)
		if identity == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrIdentityRequired))
			return
		}

		var input cancelFriendInput
		if err := req.BindJSON(r, &input); err != nil {
			resp.RespondError(w, r, err)
			return
		}
		if input.UserID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		role := relationship.Role(input.Type)
		if cerr := deps.Relationships.CancelOrReject(r.Context(), identity, input.UserID, role); cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}

		resp.RespondSuccess(w, r, relationshipStatus{Status: "not_friends"})
	}
}

// HandleListFriends returns the caller's friends.
func HandleListFriends(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromRequest(r)
		if identity == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrIdentityRequired))
			return
		}

		rec, cerr := deps.Relationships.Record(r.Context(), identity)
		if cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}

		resp.RespondSuccess(w, r, rec.Friends)
	}
}

// HandleListFriendRequests returns the caller's pending requests, sent or
// received depending on the type query parameter.
func HandleListFriendRequests(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromRequest(r)
		if identity == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrIdentityRequired))
			return
		}

		kind := r.URL.Query().Get("type")
		if kind != string(relationship.RoleSent) && kind != string(relationship.RoleReceived) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidRole))
			return
		}

		rec, cerr := deps.Relationships.Record(r.Context(), identity)
		if cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}

		requests := rec.Sent
		if kind == string(relationship.RoleReceived) {
			requests = rec.Received
		}

		resp.RespondSuccess(w, r, map[string]any{"requests": requests})
	}
}
