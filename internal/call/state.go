package call

import (
	"errors"
	"time"

	"nexthire/chat/internal/media"
)

var (
	ErrBusy           = errors.New("a call is already in progress")
	ErrNotConnected   = errors.New("call is not connected")
	ErrNoIncomingCall = errors.New("no incoming call")
	ErrNotInCall      = errors.New("not in a call")
	ErrCallEnded      = errors.New("call ended before it connected")
)

// State of the call session.
type State int

const (
	Idle State = iota
	OutgoingRinging
	IncomingRinging
	Connected
	// Ended and Failed are reported to listeners; the coordinator is Idle
	// again right after.
	Ended
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case OutgoingRinging:
		return "outgoing-ringing"
	case IncomingRinging:
		return "incoming-ringing"
	case Connected:
		return "connected"
	case Ended:
		return "ended"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Ringing reports whether s is one of the ringing states.
func (s State) Ringing() bool { return s == OutgoingRinging || s == IncomingRinging }

// Reason explains why a call ended.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonHangUp   Reason = "hangup"
	ReasonDeclined Reason = "declined"
	ReasonRemote   Reason = "remote"
	ReasonMissed   Reason = "missed"
	ReasonFailed   Reason = "failed"
)

// Event is delivered to listeners on every state change.
type Event struct {
	State      State
	Reason     Reason
	Err        error
	RemoteID   string
	RemoteName string
	// Duration of the connected part of the call, set on Ended.
	Duration time.Duration
	// Artifact is the recording finished by the teardown, if one was running.
	Artifact *media.Artifact
}

// Snapshot is the observable state of the coordinator.
type Snapshot struct {
	State         State
	RemoteID      string
	RemoteName    string
	AudioEnabled  bool
	VideoEnabled  bool
	ScreenSharing bool
	Recording     bool
	RemoteTracks  int
	Duration      time.Duration
}
