package handler

import (
	"net/http"

	"ripple/internal/app/dispatch"
	"ripple/internal/app/group"
	"ripple/internal/app/message"
	"ripple/internal/app/registry"
	"ripple/internal/app/relationship"
	"ripple/internal/configs"
)

// AppDeps bundles the shared dependencies handlers need.
type AppDeps struct {
	Config        *configs.AppConfig
	Registry      *registry.Registry
	Dispatcher    *dispatch.Dispatcher
	Relationships *relationship.Service
	Groups        *group.Service
	Messages      message.Store
}

// identityHeader carries the validated user identity set by the upstream
// authenticating proxy. Authentication itself is outside this service.
const identityHeader = "X-User-ID"

// identityFromRequest extracts the caller's identity, or "" if absent.
func identityFromRequest(r *http.Request) string {
	return r.Header.Get(identityHeader)
}
