package metrics_server

import "net"

// connection drives one accepted conn through
// Accepted → Computing → Sending → AwaitingPeerClose → Closed.
type connection struct {
	srv      *Server
	conn     net.Conn
	remote   net.Addr
	state    ConnState
	response []byte
}

func (c *connection) run() {
	c.enter(StateAccepted)
	for c.state != StateClosed {
		c.enter(c.step())
	}
}

func (c *connection) enter(state ConnState) {
	c.state = state
	c.srv.log.Debugln("connection", c.remote, "state =", state)
	c.srv.notify(c.remote, state)
}

// step performs the work of the current state and returns the next one.
func (c *connection) step() ConnState {
	switch c.state {
	case StateAccepted:
		return StateComputing

	case StateComputing:
		c.response = BuildResponse(c.srv.renderer.Render())
		return StateSending

	case StateSending:
		if _, err := c.conn.Write(c.response); err != nil {
			c.srv.log.Warn("Failed to send response to ", c.remote, ": ", err)
		}
		c.response = nil
		return StateAwaitingPeerClose

	case StateAwaitingPeerClose:
		// FIN after the body, then wait for the peer to send or hang up
		// before tearing the socket down.
		if cw, ok := c.conn.(interface{ CloseWrite() error }); ok {
			_ = cw.CloseWrite()
		}
		var buf [1]byte
		_, _ = c.conn.Read(buf[:])
		if err := c.conn.Close(); err != nil {
			c.srv.log.Debugln("connection", c.remote, "close:", err)
		}
		return StateClosed
	}

	return StateClosed
}
