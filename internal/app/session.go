package app

import (
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

// RoomSession owns everything belonging to one joined room: the media
// transport, the signaling channel, the local capture, the attribution
// map and the transcript. At most one exists per controller. Async
// callbacks keep a pointer to the session they were created for and
// check it is still the current one before acting, so completions that
// fire after leave are no-ops.
type RoomSession struct {
	ID       string
	Room     domain.RoomName
	Password string
	Self     domain.Participant
	JoinedAt time.Time

	media      core.MediaConnection
	channel    core.SignalConnection
	capture    core.CaptureDevice
	neg        *negotiator
	tracks     *trackMap
	transcript *transcript
}
