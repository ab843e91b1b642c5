package registry

// Service is the interface for all plug-in services
type Service interface {
	Start() error
	Stop() error
}

// Terminator is implemented by services that can end on their own,
// such as a read loop that stops when the connection drops.
type Terminator interface {
	Done() <-chan struct{}
	Err() error
}
