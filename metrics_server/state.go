package metrics_server

import "strconv"

// ConnState is the lifecycle stage of one accepted connection.
type ConnState int

const (
	StateListening ConnState = iota
	StateAccepted
	StateComputing
	StateSending
	StateAwaitingPeerClose
	StateClosed
)

var stateNames = [...]string{
	StateListening:         "listening",
	StateAccepted:          "accepted",
	StateComputing:         "computing",
	StateSending:           "sending",
	StateAwaitingPeerClose: "awaiting-peer-close",
	StateClosed:            "closed",
}

func (s ConnState) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}
