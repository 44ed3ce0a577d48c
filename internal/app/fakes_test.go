package app

import (
	"context"
	"errors"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

type fakePresenter struct {
	mu         sync.Mutex
	statuses   []string
	alerts     []string
	messages   []domain.ChatMessage
	resets     int
	composes   int
	created    []string // identities, in creation order
	updated    []core.SlotID
	removed    []core.SlotID
	slotByName map[string]core.SlotID
}

func newFakePresenter() *fakePresenter {
	return &fakePresenter{slotByName: make(map[string]core.SlotID)}
}

func (p *fakePresenter) Status(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, text)
}

func (p *fakePresenter) Alert(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, text)
}

func (p *fakePresenter) AppendMessage(m domain.ChatMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, m)
}

func (p *fakePresenter) ResetTranscript() { p.mu.Lock(); defer p.mu.Unlock(); p.resets++ }
func (p *fakePresenter) ClearCompose()    { p.mu.Lock(); defer p.mu.Unlock(); p.composes++ }

func (p *fakePresenter) CreateSlot(id core.SlotID, identity, streamID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, identity)
	p.slotByName[identity] = id
}

func (p *fakePresenter) UpdateSlot(id core.SlotID, streamID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated = append(p.updated, id)
}

func (p *fakePresenter) RemoveSlot(id core.SlotID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, id)
}

func (p *fakePresenter) lastStatus() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.statuses) == 0 {
		return ""
	}
	return p.statuses[len(p.statuses)-1]
}

type fakeChecker struct {
	calls [][3]string
	err   error
}

func (c *fakeChecker) CheckRoom(_ context.Context, room, password, identity string) error {
	c.calls = append(c.calls, [3]string{room, password, identity})
	return c.err
}

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	open   bool
	closes int
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return errors.New("connection closed")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	c.closes++
}

func (c *fakeConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *fakeConn) sentFrames() []core.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

type fakeDialer struct {
	params   []core.DialParams
	handlers []core.SignalHandler
	conns    []*fakeConn
	err      error
}

func (d *fakeDialer) Dial(_ context.Context, p core.DialParams, h core.SignalHandler) (core.SignalConnection, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.params = append(d.params, p)
	d.handlers = append(d.handlers, h)
	conn := &fakeConn{open: true}
	d.conns = append(d.conns, conn)
	return conn, nil
}

type fakeMedia struct {
	started    bool
	closes     int
	remote     []webrtc.SessionDescription
	answersSet []webrtc.SessionDescription
	candidates []webrtc.ICECandidateInit
	attached   []string // "identity/trackID"

	failOffer bool
	failStart bool

	onICE        func(webrtc.ICECandidateInit)
	onTrack      func(core.RemoteTrack)
	onTrackEnded func(core.RemoteTrack)
	onClosed     func()
}

func (m *fakeMedia) Start(context.Context) error {
	if m.failStart {
		return errors.New("start failed")
	}
	m.started = true
	return nil
}

func (m *fakeMedia) Close() { m.closes++ }

func (m *fakeMedia) ApplyOfferAndCreateAnswer(offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	if m.failOffer {
		return nil, errors.New("apply offer failed")
	}
	m.remote = append(m.remote, offer)
	return &webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "v=0\r\ns=answer\r\n"}, nil
}

func (m *fakeMedia) ApplyAnswer(answer webrtc.SessionDescription) error {
	m.answersSet = append(m.answersSet, answer)
	return nil
}

func (m *fakeMedia) AddICECandidate(ci webrtc.ICECandidateInit) error {
	m.candidates = append(m.candidates, ci)
	return nil
}

func (m *fakeMedia) AttachLocalTrack(identity string, track webrtc.TrackLocal) error {
	m.attached = append(m.attached, identity+"/"+track.ID())
	return nil
}

func (m *fakeMedia) OnICECandidate(fn func(webrtc.ICECandidateInit)) { m.onICE = fn }
func (m *fakeMedia) OnTrack(fn func(core.RemoteTrack))              { m.onTrack = fn }
func (m *fakeMedia) OnTrackEnded(fn func(core.RemoteTrack))         { m.onTrackEnded = fn }
func (m *fakeMedia) OnClosed(fn func())                             { m.onClosed = fn }

type fakeMediaFactory struct {
	conns []*fakeMedia
	err   error
}

func (f *fakeMediaFactory) New() (core.MediaConnection, error) {
	if f.err != nil {
		return nil, f.err
	}
	m := &fakeMedia{}
	f.conns = append(f.conns, m)
	return m, nil
}

type fakeLocalTrack struct {
	id       string
	streamID string
	kind     webrtc.RTPCodecType
}

func (t *fakeLocalTrack) Bind(webrtc.TrackLocalContext) (webrtc.RTPCodecParameters, error) {
	return webrtc.RTPCodecParameters{}, nil
}
func (t *fakeLocalTrack) Unbind(webrtc.TrackLocalContext) error { return nil }
func (t *fakeLocalTrack) ID() string                            { return t.id }
func (t *fakeLocalTrack) RID() string                           { return "" }
func (t *fakeLocalTrack) StreamID() string                      { return t.streamID }
func (t *fakeLocalTrack) Kind() webrtc.RTPCodecType             { return t.kind }

type fakeCaptureDevice struct {
	tracks   []webrtc.TrackLocal
	closes   int
	closeErr error
}

func (d *fakeCaptureDevice) Tracks() []webrtc.TrackLocal { return d.tracks }

func (d *fakeCaptureDevice) Close() error {
	d.closes++
	return d.closeErr
}

type fakeCaptureOpener struct {
	constraints []core.CaptureConstraints
	devices     []*fakeCaptureDevice
	closeErr    error
	err         error
}

func (o *fakeCaptureOpener) Open(_ context.Context, c core.CaptureConstraints) (core.CaptureDevice, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.constraints = append(o.constraints, c)
	dev := &fakeCaptureDevice{
		tracks: []webrtc.TrackLocal{
			&fakeLocalTrack{id: "video-1", streamID: "local", kind: webrtc.RTPCodecTypeVideo},
			&fakeLocalTrack{id: "audio-1", streamID: "local", kind: webrtc.RTPCodecTypeAudio},
		},
		closeErr: o.closeErr,
	}
	o.devices = append(o.devices, dev)
	return dev, nil
}
