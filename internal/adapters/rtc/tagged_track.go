package rtc

import (
	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Meet/internal/domain"
)

// taggedTrack renames a local track to its composite identifier.
// pion track IDs are fixed at construction, so the rename is a wrapper
// rather than a mutation.
type taggedTrack struct {
	webrtc.TrackLocal
	id string
}

func newTaggedTrack(identity string, t webrtc.TrackLocal) webrtc.TrackLocal {
	return &taggedTrack{
		TrackLocal: t,
		id:         domain.CompositeTrackID(identity, t.ID()),
	}
}

func (t *taggedTrack) ID() string { return t.id }
