package constants

// Action is the message-kind tag carried in the "action" field of every frame.
type Action string

const (
	// ActionPing tags the heartbeat the client sends on its own.
	ActionPing Action = "PING"
	// ActionAuth tags the server's identity request and the client's reply to it.
	ActionAuth Action = "AUTH"
	// ActionPong tags the server's liveness probe and the client's reply to it.
	ActionPong Action = "PONG"
)

// String returns the wire form of the action.
func (a Action) String() string {
	return string(a)
}
