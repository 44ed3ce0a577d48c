package app

import (
	"testing"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

func TestTrackMapAudioNeverCreatesSlot(t *testing.T) {
	p := newFakePresenter()
	m := newTrackMap(p)

	m.HandleTrack(core.RemoteTrack{ID: "bob_a1", StreamID: "s1", Kind: core.KindAudio})

	if len(p.created) != 0 || len(m.Snapshot()) != 0 {
		t.Fatal("audio tracks must not drive slots")
	}
}

func TestTrackMapOneSlotPerIdentity(t *testing.T) {
	p := newFakePresenter()
	m := newTrackMap(p)

	m.HandleTrack(core.RemoteTrack{ID: "bob_v1", StreamID: "s1", Kind: core.KindVideo})
	m.HandleTrack(core.RemoteTrack{ID: "bob_v2", StreamID: "s2", Kind: core.KindVideo})

	if len(p.created) != 1 || p.created[0] != "bob" {
		t.Fatalf("created = %v", p.created)
	}
	if len(p.updated) != 1 {
		t.Fatalf("updated = %v, second track must update the existing slot", p.updated)
	}
	snap := m.Snapshot()
	if len(snap) != 1 || snap[0].StreamID != "s2" {
		t.Fatalf("snapshot = %+v, want the latest stream reference", snap)
	}
}

func TestTrackMapUnparsableIdentity(t *testing.T) {
	p := newFakePresenter()
	m := newTrackMap(p)

	m.HandleTrack(core.RemoteTrack{ID: "_orphan", StreamID: "s1", Kind: core.KindVideo})

	snap := m.Snapshot()
	if len(snap) != 1 || snap[0].Identity != domain.DefaultRemoteIdentity {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestTrackMapRemovalIdempotent(t *testing.T) {
	p := newFakePresenter()
	m := newTrackMap(p)

	rt := core.RemoteTrack{ID: "bob_v1", StreamID: "s1", Kind: core.KindVideo}
	m.HandleTrack(rt)
	m.HandleTrackEnded(rt)
	m.HandleTrackEnded(rt) // second removal is a no-op

	if len(p.removed) != 1 {
		t.Fatalf("removed = %v", p.removed)
	}
	if len(m.Snapshot()) != 0 {
		t.Fatal("entry must be gone")
	}
}

func TestTrackMapClear(t *testing.T) {
	p := newFakePresenter()
	m := newTrackMap(p)

	m.HandleTrack(core.RemoteTrack{ID: "bob_v1", StreamID: "s1", Kind: core.KindVideo})
	m.HandleTrack(core.RemoteTrack{ID: "carol_v1", StreamID: "s2", Kind: core.KindVideo})
	m.Clear()

	if len(p.removed) != 2 {
		t.Fatalf("removed = %v", p.removed)
	}
	if len(m.Snapshot()) != 0 {
		t.Fatal("map must be empty")
	}
}
