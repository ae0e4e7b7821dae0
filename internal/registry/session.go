package registry

import (
	"slices"
	"time"

	"github.com/wagiedev/mcp-registry-go/internal/config"
)

// entryState is the lifecycle state of a connection id.
type entryState int

const (
	// stateConnecting means Connect reserved the id and is spawning or handshaking.
	stateConnecting entryState = iota
	// stateActive means the session is usable.
	stateActive
	// stateClosing means Disconnect is shutting the session down.
	stateClosing
)

func (s entryState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateActive:
		return "active"
	case stateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

type entry struct {
	state   entryState
	session *session // nil while connecting
}

// session pairs a spawned process with its initialized protocol client.
// It is immutable once published.
type session struct {
	id          string
	sessionID   string
	spec        config.LaunchSpec
	proc        config.Process
	client      config.ProtocolClient
	connectedAt time.Time
}

// SessionInfo is a read-only snapshot of an active session.
type SessionInfo struct {
	// ID is the caller-chosen connection id.
	ID string

	// SessionID uniquely identifies this session, distinguishing successive
	// sessions that reused the same connection id.
	SessionID string

	// Command and Args are the launch specification.
	Command string
	Args    []string

	// PID is the server process id, or 0 if unknown.
	PID int

	// ServerName and ServerVersion are reported by the server during the handshake.
	ServerName    string
	ServerVersion string

	// ConnectedAt is when the handshake completed.
	ConnectedAt time.Time
}

func (s *session) info() SessionInfo {
	info := SessionInfo{
		ID:          s.id,
		SessionID:   s.sessionID,
		Command:     s.spec.Command,
		Args:        slices.Clone(s.spec.Args),
		PID:         s.proc.PID(),
		ConnectedAt: s.connectedAt,
	}

	if server := s.client.ServerInfo(); server != nil {
		info.ServerName = server.Name
		info.ServerVersion = server.Version
	}

	return info
}
