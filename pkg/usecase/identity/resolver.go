// Package identity derives the session and actor ids of an invocation from
// heterogeneous, partially untrustworthy sources. Each source is a pure
// strategy; resolution applies the strategies in a fixed precedence order
// and takes the first non-empty result.
package identity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jeni-ai/jeni/pkg/model"
)

// Header names recognized by the resolver. The runtime-specific names are
// part of the wire contract with the hosting runtime.
const (
	HeaderSessionID        = "X-Session-Id"
	HeaderRuntimeSessionID = "X-Amzn-Bedrock-AgentCore-Runtime-Session-Id"
	HeaderRuntimeUserID    = "X-Amzn-Bedrock-AgentCore-Runtime-User-Id"
)

// SessionFallbackPrefix marks generated session ids so they are never
// mistaken for runtime-assigned ones.
const SessionFallbackPrefix = "dev-"

// Payload is the decoded invocation body. It may be nil or carry arbitrary
// caller-supplied values.
type Payload map[string]any

// Context exposes the identity hints of the hosting runtime. Either method
// may return empty; implementations must not fail on absent data.
type Context interface {
	SessionID() string
	Headers() map[string]string
}

// strategy probes one identity source. It returns "" when the source has
// nothing to offer.
type strategy func(payload Payload, rctx Context) string

// Session resolution order: explicit payload value (dev/test entry path),
// runtime-assigned session id, caller headers, generated fallback. The
// fallback is fresh per invocation; a constant value here would make
// unrelated callers share session state.
var sessionStrategies = []strategy{
	payloadValue("session_id", "sessionId"),
	contextSession,
	headerValue(HeaderSessionID, HeaderRuntimeSessionID),
}

// Actor resolution order: caller-identity header, explicit payload value,
// fixed sentinel.
var actorStrategies = []strategy{
	headerValue(HeaderRuntimeUserID),
	payloadValue("user_id"),
}

// Resolve derives the full session identity of an invocation.
func Resolve(payload Payload, rctx Context) model.SessionIdentity {
	return model.SessionIdentity{
		SessionID: ResolveSession(payload, rctx),
		ActorID:   ResolveActor(payload, rctx),
	}
}

// ResolveSession returns the session id of the invocation. It never
// returns an empty string.
func ResolveSession(payload Payload, rctx Context) string {
	for _, s := range sessionStrategies {
		if v := s(payload, rctx); v != "" {
			return v
		}
	}
	return SessionFallbackPrefix + uuid.NewString()
}

// ResolveActor returns the actor id of the invocation. It never returns an
// empty string.
func ResolveActor(payload Payload, rctx Context) string {
	for _, s := range actorStrategies {
		if v := s(payload, rctx); v != "" {
			return v
		}
	}
	return model.DefaultActorID
}

// payloadValue probes the payload for the first key holding a non-empty
// value. A nil payload yields nothing.
func payloadValue(keys ...string) strategy {
	return func(payload Payload, _ Context) string {
		for _, key := range keys {
			if v := asString(payload[key]); v != "" {
				return v
			}
		}
		return ""
	}
}

func contextSession(_ Payload, rctx Context) string {
	if rctx == nil {
		return ""
	}
	return rctx.SessionID()
}

// headerValue probes the runtime headers for the first matching name,
// case-insensitively. A nil context or absent header map yields nothing.
func headerValue(names ...string) strategy {
	return func(_ Payload, rctx Context) string {
		if rctx == nil {
			return ""
		}
		headers := rctx.Headers()
		if len(headers) == 0 {
			return ""
		}
		for _, name := range names {
			for k, v := range headers {
				if strings.EqualFold(k, name) && v != "" {
					return v
				}
			}
		}
		return ""
	}
}

// asString renders a payload value for use as an identifier. Callers may
// send ids as non-string JSON values.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
