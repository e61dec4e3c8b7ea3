package model

// SessionIdentity pins one invocation to a conversation session and to the
// actor whose memory namespace it reads and writes. Derived once per
// inbound request and not mutated afterwards.
type SessionIdentity struct {
	SessionID string
	ActorID   string
}
