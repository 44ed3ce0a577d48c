package core

import (
	"context"

	"github.com/pion/webrtc/v4"
)

// CaptureConstraints mirror the getUserMedia request: ideal resolution
// plus whether audio is wanted.
type CaptureConstraints struct {
	Width  int
	Height int
	Audio  bool
}

// CaptureDevice holds the acquired local tracks. Owned by the session
// lifecycle controller; Close stops every track.
type CaptureDevice interface {
	Tracks() []webrtc.TrackLocal
	Close() error
}

// CaptureOpener is the media-capture collaborator boundary.
type CaptureOpener interface {
	Open(ctx context.Context, c CaptureConstraints) (CaptureDevice, error)
}
