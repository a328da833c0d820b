/*
Package handler provides the HTTP handlers and routing setup for the server.

This file contains the direct message handlers: send (persist, then fan out to
the recipient's personal room) and conversation history.
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

type sendMessageInput struct {
	Text     string `json:"text"`
	ImageRef string `json:"imageRef"`
}

// validateMessageBody enforces the message body rules: at least one of text
// and imageRef, and text within the size limit.
func validateMessageBody(input sendMessageInput) *errs.CustomError {
	if input.Text == "" && input.ImageRef == "" {
		return errs.NewError(errs.ErrMessageEmpty)
	}
	if len(input.Text) > message.MaxTextBytes {
		return errs.NewError(errs.ErrMessageContentTooLong)
	}
	return nil
}

// HandleSendMessage persists a direct message and delivers it to the
// recipient's personal room.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromRequest(r)
		if identity == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrIdentityRequired))
			return
		}

		targetID := chi.URLParam(r, "userID")
		if targetID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		var input sendMessageInput
		if err := req.BindJSON(r, &input); err != nil {
			resp.RespondError(w, r, err)
			return
		}
		if cerr := validateMessageBody(input); cerr != nil {
			resp.RespondError(w, r, cerr)
			return
		}

		m := &message.Message{
			SenderID:   identity,
			TargetID:   targetID,
			TargetKind: message.TargetUser,
			Text:       input.Text,
			ImageRef:   input.ImageRef,
		}

		if err := deps.Messages.Insert(r.Context(), m); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		deps.Dispatcher.DeliverPrivate(m)

		resp.RespondSuccess(w, r, m)
	}
}

// HandleListMessages returns the direct message history between the caller
// and another user.
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromRequest(r)
		if identity == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrIdentityRequired))
			return
		}

		peerID := chi.URLParam(r, "userID")
		if peerID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		messages, err := deps.Messages.ListConversation(r.Context(), identity, peerID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, messages)
	}
}
