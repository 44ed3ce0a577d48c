package core

import "context"

// Frame is a raw signaling payload as read from or written to the wire.
type Frame []byte

// SignalConnection abstracts the duplex signaling channel of one room
// session. Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
	IsOpen() bool
}

// SignalHandler receives channel events. Frames arrive one at a time in
// wire order; a handler runs to completion before the next frame is
// delivered.
type SignalHandler interface {
	HandleFrame(Frame)
	// HandleError reports a transport failure. HandleClose still follows.
	HandleError(err error)
	// HandleClose fires exactly once when the channel is gone.
	HandleClose(err error)
}

// DialParams identify the room endpoint. The dialer builds the wire URL
// (scheme selection, query escaping) from these.
type DialParams struct {
	Server   string // http(s) base URL of the relay
	Room     string
	Identity string
	Password string
}

type SignalDialer interface {
	Dial(ctx context.Context, p DialParams, h SignalHandler) (SignalConnection, error)
}
