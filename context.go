package authkit

import (
	"context"
)

// Context keys for AuthKit values.
type contextKey string

const (
	contextKeyActor     contextKey = "authkit:actor"
	contextKeyReturnTo  contextKey = "authkit:return_to"
	contextKeyIPAddress contextKey = "authkit:ip_address"
	contextKeyUserAgent contextKey = "authkit:user_agent"
	contextKeyRequestID contextKey = "authkit:request_id"
)

// WithActor adds the resolved actor profile to the context.
// This is set by the middleware after an Allow decision.
func WithActor(ctx context.Context, profile *Profile) context.Context {
	return context.WithValue(ctx, contextKeyActor, profile)
}

// ActorFromContext retrieves the actor profile from context.
// Returns nil if nothing is authenticated.
func ActorFromContext(ctx context.Context) *Profile {
	if v := ctx.Value(contextKeyActor); v != nil {
		if p, ok := v.(*Profile); ok {
			return p
		}
	}
	return nil
}

// WithReturnTo records the originally requested location so navigation can
// resume after a successful sign-in.
func WithReturnTo(ctx context.Context, location string) context.Context {
	return context.WithValue(ctx, contextKeyReturnTo, location)
}

// ReturnTo retrieves the captured pre-authentication location from context.
// Returns empty string if not set.
func ReturnTo(ctx context.Context) string {
	if v := ctx.Value(contextKeyReturnTo); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithIPAddress adds the client IP address to the context (for audit).
func WithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKeyIPAddress, ip)
}

// GetIPAddress retrieves the IP address from context.
func GetIPAddress(ctx context.Context) string {
	if v := ctx.Value(contextKeyIPAddress); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithUserAgent adds the user agent to the context (for audit).
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, contextKeyUserAgent, ua)
}

// GetUserAgent retrieves the user agent from context.
func GetUserAgent(ctx context.Context) string {
	if v := ctx.Value(contextKeyUserAgent); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context (for audit and correlation).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(contextKeyRequestID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RequestMeta holds all request-level audit information from context.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// GetRequestMeta extracts all audit information from context.
func GetRequestMeta(ctx context.Context) RequestMeta {
	return RequestMeta{
		IPAddress: GetIPAddress(ctx),
		UserAgent: GetUserAgent(ctx),
		RequestID: GetRequestID(ctx),
	}
}

// WithRequestMeta adds all audit information to context at once.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	if meta.IPAddress != "" {
		ctx = WithIPAddress(ctx, meta.IPAddress)
	}
	if meta.UserAgent != "" {
		ctx = WithUserAgent(ctx, meta.UserAgent)
	}
	if meta.RequestID != "" {
		ctx = WithRequestID(ctx, meta.RequestID)
	}
	return ctx
}
