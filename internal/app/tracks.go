package app

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

// SlotView is a read-only snapshot of one render slot.
type SlotView struct {
	Slot     core.SlotID `json:"slot"`
	Identity string      `json:"identity"`
	StreamID string      `json:"stream_id"`
}

type slotEntry struct {
	slot     core.SlotID
	identity string
	streamID string
}

// trackMap attributes remote tracks to participants. At most one entry
// per identity; a later track from the same identity replaces the
// stream reference instead of allocating a second slot. Mutated only
// from the controller's serialized handlers.
type trackMap struct {
	present    core.Presenter
	byIdentity map[string]*slotEntry
}

func newTrackMap(present core.Presenter) *trackMap {
	return &trackMap{
		present:    present,
		byIdentity: make(map[string]*slotEntry),
	}
}

// HandleTrack processes a remote track arrival. Audio tracks ride the
// same stream as the video and never create a slot of their own.
func (m *trackMap) HandleTrack(rt core.RemoteTrack) {
	if rt.Kind == core.KindAudio {
		return
	}
	identity := domain.IdentityFromTrackID(rt.ID)
	if e, ok := m.byIdentity[identity]; ok {
		e.streamID = rt.StreamID
		m.present.UpdateSlot(e.slot, rt.StreamID)
		log.Debug().Str("module", "app.tracks").Str("identity", identity).Msg("slot stream replaced")
		return
	}
	e := &slotEntry{
		slot:     core.SlotID(uuid.NewString()),
		identity: identity,
		streamID: rt.StreamID,
	}
	m.byIdentity[identity] = e
	activeSlots.Inc()
	m.present.CreateSlot(e.slot, identity, rt.StreamID)
	log.Info().Str("module", "app.tracks").Str("identity", identity).Str("stream_id", rt.StreamID).Msg("slot created")
}

// HandleTrackEnded removes the slot of the producing identity.
// Idempotent: a second removal for the same identity is a no-op.
func (m *trackMap) HandleTrackEnded(rt core.RemoteTrack) {
	identity := domain.IdentityFromTrackID(rt.ID)
	e, ok := m.byIdentity[identity]
	if !ok {
		return
	}
	delete(m.byIdentity, identity)
	activeSlots.Dec()
	m.present.RemoveSlot(e.slot)
	log.Info().Str("module", "app.tracks").Str("identity", identity).Msg("slot removed")
}

// Clear drops every slot, notifying the presenter for each.
func (m *trackMap) Clear() {
	for identity, e := range m.byIdentity {
		delete(m.byIdentity, identity)
		activeSlots.Dec()
		m.present.RemoveSlot(e.slot)
	}
}

func (m *trackMap) Snapshot() []SlotView {
	out := make([]SlotView, 0, len(m.byIdentity))
	for _, e := range m.byIdentity {
		out = append(out, SlotView{Slot: e.slot, Identity: e.identity, StreamID: e.streamID})
	}
	return out
}
