/*
Package handler provides the HTTP handlers and routing setup for the server.

This file contains the WebSocket connect handler: it rate limits, extracts the
user identity, upgrades the connection, and hands the session to the registry.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"ripple/internal/app/registry"
	"ripple/internal/pkg/limiter"
	"ripple/internal/pkg/logx"
)

// HandleWebSocket creates an HTTP HandlerFunc that processes WebSocket
// connection requests. A connection without an identity is treated as an
// anonymous transport and dropped silently after the upgrade.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		identity := r.URL.Query().Get("uid")
		if identity == "" {
			identity = identityFromRequest(r)
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		if identity == "" {
			logx.Info("Dropping anonymous WebSocket connection.")
			conn.Close()
			return
		}

		session := registry.NewSession(deps.Registry, conn, identity)

		go session.WritePump()

		deps.Registry.Register(session)

		logx.Info("WebSocket session established", "identity", identity, "session_id", session.ID)

		session.ReadPump()
	}
}
