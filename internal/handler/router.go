/*
Package handler provides the HTTP handlers and routing setup for the server.

This file defines the main Router, applying middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers
(API and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"ripple/internal/pkg/limiter"
	"ripple/internal/pkg/logx"
	"ripple/internal/pkg/resp"
)

const (
	// SendRate limits message sends per IP (events per second).
	SendRate  = 5
	SendBurst = 10

	// ConnectRate limits WebSocket connects per IP.
	ConnectRate  = 0.2
	ConnectBurst = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global
// and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	sendLimiter := limiter.NewIPRateLimiter(rate.Limit(SendRate), SendBurst)
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", identityHeader},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Ripple Messaging Core",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/friends", func(friends chi.Router) {
			friends.Get("/", HandleListFriends(deps))
			friends.Get("/requests", HandleListFriendRequests(deps))
			friends.Post("/request", HandleSendFriendRequest(deps))
			friends.Post("/accept", HandleAcceptFriendRequest(deps))
			friends.Post("/cancel", HandleCancelFriendRequest(deps))
		})

		api.Route("/groups", func(groups chi.Router) {
			groups.Get("/", HandleListGroups(deps))
			groups.Post("/", HandleCreateGroup(deps))
			groups.Post("/{id}/members", HandleAddGroupMembers(deps))
			groups.Post("/{id}/members/remove", HandleRemoveGroupMember(deps))
			groups.Post("/{id}/leave", HandleLeaveGroup(deps))
			groups.Get("/{id}/messages", HandleListGroupMessages(deps))
			groups.With(sendLimiter.Middleware).Post("/{id}/messages", HandleSendGroupMessage(deps))
		})

		api.Route("/messages", func(messages chi.Router) {
			messages.Get("/{userID}", HandleListMessages(deps))
			messages.With(sendLimiter.Middleware).Post("/{userID}", HandleSendMessage(deps))
		})
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r
}
