// Package app holds the client core: session lifecycle, negotiation,
// track attribution and the chat relay.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/signal"
)

var ErrChannelNotOpen = errors.New("signaling channel not open")

const (
	defaultCaptureWidth  = 1280
	defaultCaptureHeight = 720
)

// ControllerParams wires the collaborators into a Controller.
type ControllerParams struct {
	Server        string
	CaptureWidth  int
	CaptureHeight int

	Checker core.RoomChecker
	Dialer  core.SignalDialer
	Media   core.MediaFactory
	Capture core.CaptureOpener
	Present core.Presenter
}

// Controller is the session lifecycle controller. One mutex serializes
// every operation and every incoming event, so handlers for a given
// event always run to completion before the next one is processed.
type Controller struct {
	mu         sync.Mutex
	sess       *RoomSession
	lastStatus string

	server        string
	captureWidth  int
	captureHeight int

	checker core.RoomChecker
	dialer  core.SignalDialer
	media   core.MediaFactory
	capture core.CaptureOpener
	present core.Presenter

	now func() time.Time
}

func NewController(p ControllerParams) *Controller {
	if p.CaptureWidth == 0 {
		p.CaptureWidth = defaultCaptureWidth
	}
	if p.CaptureHeight == 0 {
		p.CaptureHeight = defaultCaptureHeight
	}
	return &Controller{
		lastStatus:    StatusDisconnected,
		server:        p.Server,
		captureWidth:  p.CaptureWidth,
		captureHeight: p.CaptureHeight,
		checker:       p.Checker,
		dialer:        p.Dialer,
		media:         p.Media,
		capture:       p.Capture,
		present:       p.Present,
		now:           time.Now,
	}
}

// JoinRoom verifies the room, acquires capture, builds the media
// transport and opens the signaling channel. Validation failures return
// before any network action. An already-active session is torn down
// first; the original client silently stacked a second connection here,
// which was a bug.
func (c *Controller) JoinRoom(ctx context.Context, room, password, identity string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room = strings.TrimSpace(room)
	password = strings.TrimSpace(password)
	if room == "" {
		return domain.ErrRoomNameEmpty
	}
	if password == "" {
		return domain.ErrPasswordEmpty
	}
	self, err := domain.NewParticipant(identity)
	if err != nil {
		return err
	}

	if c.sess != nil {
		c.leaveLocked()
	}

	c.setStatus(StatusConnecting)
	if err := c.checker.CheckRoom(ctx, room, password, self.Identity); err != nil {
		c.setStatus(StatusJoinFailed)
		c.present.Alert(err.Error())
		return err
	}

	sess := &RoomSession{
		ID:         uuid.NewString(),
		Room:       domain.RoomName(room),
		Password:   password,
		Self:       self,
		JoinedAt:   c.now(),
		tracks:     newTrackMap(c.present),
		transcript: &transcript{},
	}

	dev, err := c.capture.Open(ctx, core.CaptureConstraints{
		Width:  c.captureWidth,
		Height: c.captureHeight,
		Audio:  true,
	})
	if err != nil {
		c.setStatus(StatusMediaError)
		c.present.Alert("Error accessing media devices: " + err.Error())
		return fmt.Errorf("media access: %w", err)
	}
	sess.capture = dev

	mc, err := c.media.New()
	if err != nil {
		c.releaseCapture(sess)
		c.setStatus(StatusConnectionError)
		return fmt.Errorf("media transport: %w", err)
	}
	sess.media = mc
	sess.neg = newNegotiator(mc, sess.Room, c.setStatus, func(env signal.Envelope) {
		_ = c.sendLocked(sess, env)
	})

	mc.OnICECandidate(func(ci webrtc.ICECandidateInit) { c.onLocalCandidate(sess, ci) })
	mc.OnTrack(func(rt core.RemoteTrack) { c.onRemoteTrack(sess, rt) })
	mc.OnTrackEnded(func(rt core.RemoteTrack) { c.onRemoteTrackEnded(sess, rt) })
	mc.OnClosed(func() { c.onMediaClosed(sess) })

	if err := mc.Start(ctx); err != nil {
		mc.Close()
		c.releaseCapture(sess)
		c.setStatus(StatusConnectionError)
		return fmt.Errorf("media transport start: %w", err)
	}

	for _, t := range dev.Tracks() {
		if err := mc.AttachLocalTrack(self.Identity, t); err != nil {
			log.Error().Err(err).Str("module", "app").Str("track_id", t.ID()).Msg("attach local track")
		}
	}

	conn, err := c.dialer.Dial(ctx, core.DialParams{
		Server:   c.server,
		Room:     room,
		Identity: self.Identity,
		Password: password,
	}, &sessionHandler{c: c, sess: sess})
	if err != nil {
		mc.Close()
		c.releaseCapture(sess)
		c.setStatus(StatusConnectionError)
		return fmt.Errorf("open signaling channel: %w", err)
	}
	sess.channel = conn
	c.sess = sess

	c.present.ResetTranscript()
	c.setStatus(StatusConnected(sess.Room))
	log.Info().Str("module", "app").Str("room", room).Str("user", self.Identity).Msg("joined room")
	return nil
}

// LeaveRoom tears down the active session. Idempotent: calling it with
// no session is a no-op.
func (c *Controller) LeaveRoom() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leaveLocked()
}

// leaveLocked releases channel, transport, capture and slots, in that
// order, continuing past individual failures.
func (c *Controller) leaveLocked() {
	sess := c.sess
	if sess == nil {
		return
	}
	c.sess = nil
	if sess.channel != nil {
		sess.channel.Close()
	}
	if sess.media != nil {
		sess.media.Close()
	}
	c.releaseCapture(sess)
	sess.neg.CloseState()
	sess.tracks.Clear()
	c.setStatus(StatusDisconnected)
	log.Info().Str("module", "app").Str("room", string(sess.Room)).Msg("left room")
}

func (c *Controller) releaseCapture(sess *RoomSession) {
	if sess.capture == nil {
		return
	}
	if err := sess.capture.Close(); err != nil {
		log.Error().Err(err).Str("module", "app").Msg("release capture")
	}
	sess.capture = nil
}

// SendChat emits a chat envelope from the local participant and appends
// the message to the transcript with local clock time. Blank text is a
// no-op. A closed channel surfaces as an alert, not a throw.
func (c *Controller) SendChat(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	sess := c.sess
	if sess == nil || sess.channel == nil || !sess.channel.IsOpen() {
		c.present.Alert("Not connected to the room yet")
		return ErrChannelNotOpen
	}
	if err := c.sendLocked(sess, signal.Chat(sess.Self.Identity, text)); err != nil {
		c.present.Alert("Not connected to the room yet")
		return fmt.Errorf("%w: %v", ErrChannelNotOpen, err)
	}
	c.appendChat(sess, domain.ChatMessage{
		Sender:    sess.Self.Identity,
		Text:      text,
		Timestamp: c.now(),
	})
	c.present.ClearCompose()
	return nil
}

func (c *Controller) sendLocked(sess *RoomSession, env signal.Envelope) error {
	b, err := env.Encode()
	if err != nil {
		return err
	}
	if sess.channel == nil {
		return ErrChannelNotOpen
	}
	if err := sess.channel.TrySend(core.Frame(b)); err != nil {
		log.Error().Err(err).Str("module", "app").Str("event", env.Event).Msg("send envelope")
		return err
	}
	envelopesSent.WithLabelValues(env.Event).Inc()
	return nil
}

func (c *Controller) appendChat(sess *RoomSession, m domain.ChatMessage) {
	sess.transcript.Append(m)
	c.present.AppendMessage(m)
}

// handleFrame dispatches one incoming envelope. Runs under the lock, so
// no two handlers interleave.
func (c *Controller) handleFrame(sess *RoomSession, f core.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != sess {
		return
	}
	env, err := signal.Decode(f)
	if err != nil {
		envelopesDropped.Inc()
		log.Error().Err(err).Str("module", "app").Msg("bad envelope")
		return
	}
	switch env.Event {
	case signal.EventOffer:
		envelopesReceived.WithLabelValues(env.Event).Inc()
		sess.neg.HandleOffer(env)
	case signal.EventAnswer:
		envelopesReceived.WithLabelValues(env.Event).Inc()
		sess.neg.HandleAnswer(env)
	case signal.EventCandidate:
		envelopesReceived.WithLabelValues(env.Event).Inc()
		sess.neg.HandleCandidate(env)
	case signal.EventChat:
		envelopesReceived.WithLabelValues(env.Event).Inc()
		c.appendChat(sess, domain.ChatMessage{
			Sender:    env.Sender,
			Text:      env.Text,
			Timestamp: c.now(),
		})
	case signal.EventChatHistory:
		envelopesReceived.WithLabelValues(env.Event).Inc()
		history, err := env.ChatHistory()
		if err != nil {
			log.Error().Err(err).Str("module", "app").Msg("bad chat history")
			return
		}
		for _, m := range history {
			c.appendChat(sess, m)
		}
	default:
		// Unknown kinds are forward-compatibility, not errors.
		envelopesReceived.WithLabelValues("unknown").Inc()
		log.Warn().Str("module", "app").Str("event", env.Event).Msg("unknown envelope event")
	}
}

// handleChannelClose only updates status. Resources stay in place until
// an explicit leave or the forced leave at the start of the next join.
func (c *Controller) handleChannelClose(sess *RoomSession, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != sess {
		return
	}
	log.Info().Err(err).Str("module", "app").Str("room", string(sess.Room)).Msg("signaling channel closed")
	c.setStatus(StatusChannelClosed)
}

func (c *Controller) handleChannelError(sess *RoomSession, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != sess {
		return
	}
	log.Error().Err(err).Str("module", "app").Msg("signaling channel error")
	c.setStatus(StatusConnectionError)
}

func (c *Controller) onLocalCandidate(sess *RoomSession, ci webrtc.ICECandidateInit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != sess {
		return
	}
	sess.neg.HandleLocalCandidate(ci)
}

func (c *Controller) onRemoteTrack(sess *RoomSession, rt core.RemoteTrack) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != sess {
		return
	}
	sess.tracks.HandleTrack(rt)
}

func (c *Controller) onRemoteTrackEnded(sess *RoomSession, rt core.RemoteTrack) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != sess {
		return
	}
	sess.tracks.HandleTrackEnded(rt)
}

func (c *Controller) onMediaClosed(sess *RoomSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != sess {
		return
	}
	c.setStatus(StatusConnectionError)
}

func (c *Controller) setStatus(text string) {
	c.lastStatus = text
	c.present.Status(text)
}

// Status returns the last status string pushed to the presenter.
func (c *Controller) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastStatus
}

// CurrentRoom reports the active room, if any.
func (c *Controller) CurrentRoom() (domain.RoomName, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return "", false
	}
	return c.sess.Room, true
}

func (c *Controller) Transcript() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	return c.sess.transcript.Messages()
}

func (c *Controller) Slots() []SlotView {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	return c.sess.tracks.Snapshot()
}

func (c *Controller) NegotiationState() NegotiationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return NegIdle
	}
	return c.sess.neg.state
}

// sessionHandler routes channel events into the controller with the
// session they belong to.
type sessionHandler struct {
	c    *Controller
	sess *RoomSession
}

func (h *sessionHandler) HandleFrame(f core.Frame) { h.c.handleFrame(h.sess, f) }
func (h *sessionHandler) HandleError(err error)    { h.c.handleChannelError(h.sess, err) }
func (h *sessionHandler) HandleClose(err error)    { h.c.handleChannelClose(h.sess, err) }
