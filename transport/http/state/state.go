package state

import "sync/atomic"

type ServerState int32

const (
	ServerStateReady ServerState = iota + 1
	ServerStateInGracePeriod
	ServerStateInCleanupPeriod
)

func (s ServerState) String() string {
	switch s {
	case ServerStateReady:
		return "ready"
	case ServerStateInGracePeriod:
		return "grace period"
	case ServerStateInCleanupPeriod:
		return "cleanup period"
	default:
		return "starting"
	}
}

// Server is the lifecycle state shared between the HTTP server and the
// health endpoint. It is safe for concurrent use.
type Server struct {
	value atomic.Int32
}

func New() *Server {
	return &Server{}
}

func (s *Server) Set(state ServerState) {
	s.value.Store(int32(state))
}

func (s *Server) Get() ServerState {
	return ServerState(s.value.Load())
}
