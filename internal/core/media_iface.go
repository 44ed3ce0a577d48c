package core

import (
	"context"

	"github.com/pion/webrtc/v4"
)

// Track kinds as carried in RemoteTrack.Kind.
const (
	KindAudio = "audio"
	KindVideo = "video"
)

// RemoteTrack is a transport-agnostic view of an incoming media track,
// enough for attribution: the composite identifier, the stream it rides
// on and its kind.
type RemoteTrack struct {
	ID       string
	StreamID string
	Kind     string
}

// MediaConnection is the negotiated peer connection of one room session.
// Exactly one instance per session; never reused across rooms.
type MediaConnection interface {
	// Start configures internal callbacks and binds the connection lifetime to ctx.
	Start(ctx context.Context) error
	// Close stops all underlying media resources.
	Close()
	// ApplyOfferAndCreateAnswer sets the remote offer, creates a local
	// answer, sets it and returns it.
	ApplyOfferAndCreateAnswer(offer webrtc.SessionDescription) (*webrtc.SessionDescription, error)
	// ApplyAnswer sets a remote answer description.
	ApplyAnswer(answer webrtc.SessionDescription) error
	// AddICECandidate applies a remote ICE candidate. Only valid once a
	// remote description has been set.
	AddICECandidate(webrtc.ICECandidateInit) error
	// AttachLocalTrack adds a local capture track re-tagged with the
	// composite {identity}_{rawID} identifier.
	AttachLocalTrack(identity string, track webrtc.TrackLocal) error
	// OnICECandidate sets a callback for newly gathered local ICE candidates.
	OnICECandidate(func(webrtc.ICECandidateInit))
	// OnTrack sets a callback invoked when a new remote track arrives.
	OnTrack(func(RemoteTrack))
	// OnTrackEnded sets a callback invoked when a remote track stops.
	OnTrackEnded(func(RemoteTrack))
	// OnClosed sets a callback for cleanup when the transport dies.
	OnClosed(func())
}

// MediaFactory builds a fresh MediaConnection per join.
type MediaFactory interface {
	New() (MediaConnection, error)
}
