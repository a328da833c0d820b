/*
Package handler provides the HTTP handlers and routing setup for the server.

This file contains the group handlers. Each mutation persists first through
the group service, then drives the dispatcher so live members learn about the
change; the dispatcher only fires after the write is durable.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ripple/internal/app/message"
	"ripple/internal/pkg/errs"
	"ripple/internal/pkg/req"
	"ripple/internal/pkg/resp"
)

type createGroupInput struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type groupMembersInput struct {
	MemberIDs []string `json:"memberIds"`
}

type removeMemberInput struct {
	MemberID string `json:"memberId"`
}

// HandleCreateGroup creates a group and notifies every initial member.
func HandleCreateGroup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromRequest(r)
		if identity == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrIdentityRequired))
			return
		}

		var input createGroupInput
		if err := req.BindJSON(r, &input); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		g, cerr := deps.Groups.Create(r.Context(), identity, input.Name, input.Members)
		if cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}

		deps.Dispatcher.GroupCreated(g)

		resp.RespondSuccess(w, r, g)
	}
}

// HandleListGroups returns every group the caller belongs to.
func HandleListGroups(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromRequest(r)
		if identity == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrIdentityRequired))
			return
		}

		groups, cerr := deps.Groups.ListByMember(r.Context(), identity)
		if cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}

		resp.RespondSuccess(w, r, groups)
	}
}

// HandleAddGroupMembers adds members to a group and notifies both the new
// members and the existing ones.
func HandleAddGroupMembers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromRequest(r)
		if identity == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrIdentityRequired))
			return
		}

		groupID := chi.URLParam(r, "id")

		var input groupMembersInput
		if err := req.BindJSON(r, &input); err != nil {
			resp.RespondError(w, r, err)
			return
		}
		if len(input.MemberIDs) == 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		g, added, cerr := deps.Groups.AddMembers(r.Context(), groupID, identity, input.MemberIDs)
		if cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}

		deps.Dispatcher.MembersAdded(g, added)

		resp.RespondSuccess(w, r, g)
	}
}

// HandleLeaveGroup removes the caller from a group, reassigning creatorship or
// disbanding the group as needed, and notifies the affected users.
func HandleLeaveGroup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromRequest(r)
		if identity == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrIdentityRequired))
			return
		}

		groupID := chi.URLParam(r, "id")

		result, cerr := deps.Groups.Leave(r.Context(), groupID, identity)
		if cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}

		if result.Disbanded {
			deps.Dispatcher.GroupDisbanded(result.GroupID, identity)
		} else {
			deps.Dispatcher.MemberLeft(result.Group, identity)
		}

		resp.RespondSuccess(w, r, map[string]bool{"disbanded": result.Disbanded})
	}
}

// HandleRemoveGroupMember removes a member from a group on behalf of the
// creator and notifies the removed user and the remaining members.
func HandleRemoveGroupMember(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromRequest(r)
		if identity == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrIdentityRequired))
			return
		}

		groupID := chi.URLParam(r, "id")

		var input removeMemberInput
		if err := req.BindJSON(r, &input); err != nil {
			resp.RespondError(w, r, err)
			return
		}
		if input.MemberID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		g, cerr := deps.Groups.RemoveMember(r.Context(), groupID, identity, input.MemberID)
		if cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}

		deps.Dispatcher.MemberRemoved(g, input.MemberID)

		resp.RespondSuccess(w, r, g)
	}
}

// HandleListGroupMessages returns a group's message history. Only members may
// read it.
func HandleListGroupMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromRequest(r)
		if identity == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrIdentityRequired))
			return
		}

		groupID := chi.URLParam(r, "id")

		g, cerr := deps.Groups.Get(r.Context(), groupID)
		if cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}
		if !g.HasMember(identity) {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotGroupMember))
			return
		}

		messages, err := deps.Messages.ListGroup(r.Context(), groupID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, messages)
	}
}

// HandleSendGroupMessage persists a group message and fans it out to every
// member except the sender.
func HandleSendGroupMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromRequest(r)
		if identity == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrIdentityRequired))
			return
		}

		groupID := chi.URLParam(r, "id")

		var input sendMessageInput
		if err := req.BindJSON(r, &input); err != nil {
			resp.RespondError(w, r, err)
			return
		}
		if cerr := validateMessageBody(input); cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}

		g, cerr := deps.Groups.Get(r.Context(), groupID)
		if cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}
		if !g.HasMember(identity) {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotGroupMember))
			return
		}

		m := &message.Message{
			SenderID:   identity,
			TargetID:   groupID,
			TargetKind: message.TargetGroup,
			Text:       input.Text,
			ImageRef:   input.ImageRef,
		}

		if err := deps.Messages.Insert(r.Context(), m); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		deps.Dispatcher.DeliverGroup(m, g)

		resp.RespondSuccess(w, r, m)
	}
}
