package app

import (
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/signal"
)

type NegotiationState int

const (
	NegIdle NegotiationState = iota
	NegConnecting
	NegNegotiating
	NegStable
	NegClosed
)

func (s NegotiationState) String() string {
	switch s {
	case NegIdle:
		return "idle"
	case NegConnecting:
		return "connecting"
	case NegNegotiating:
		return "negotiating"
	case NegStable:
		return "stable"
	case NegClosed:
		return "closed"
	}
	return "unknown"
}

// negotiator drives the offer/answer/candidate exchange of one session.
// This client only ever answers; offers originate at the relay. All
// methods run under the controller's lock, so no locking here.
type negotiator struct {
	media  core.MediaConnection
	send   func(signal.Envelope)
	status func(string)
	room   domain.RoomName

	state NegotiationState
	// remoteSet flips once the first remote description is applied.
	// Candidates arriving earlier wait in pending.
	remoteSet bool
	pending   []webrtc.ICECandidateInit
}

func newNegotiator(media core.MediaConnection, room domain.RoomName, status func(string), send func(signal.Envelope)) *negotiator {
	return &negotiator{
		media:  media,
		send:   send,
		status: status,
		room:   room,
		state:  NegConnecting,
	}
}

// HandleOffer applies a remote offer and replies with exactly one
// answer envelope. Renegotiation offers re-enter here from Stable and
// take the same path. A failure surfaces as a connection-error status
// and stalls the machine; the channel stays open for a fresh offer or
// an explicit leave.
func (n *negotiator) HandleOffer(env signal.Envelope) {
	offer, err := env.SessionDescription()
	if err != nil {
		log.Error().Err(err).Str("module", "app.negotiator").Msg("bad offer payload")
		return
	}
	n.state = NegNegotiating

	answer, err := n.media.ApplyOfferAndCreateAnswer(offer)
	if err != nil {
		log.Error().Err(err).Str("module", "app.negotiator").Msg("apply offer")
		n.status(StatusConnectionError)
		return
	}
	n.remoteSet = true
	n.flushPending()

	out, err := signal.Answer(*answer)
	if err != nil {
		log.Error().Err(err).Str("module", "app.negotiator").Msg("encode answer")
		n.status(StatusConnectionError)
		return
	}
	n.send(out)
	answersCreated.Inc()
	n.state = NegStable
	n.status(StatusConnected(n.room))
	log.Info().Str("module", "app.negotiator").Str("room", string(n.room)).Msg("negotiated")
}

// HandleAnswer applies a remote answer. The current protocol never
// sends one to this role; accepted defensively.
func (n *negotiator) HandleAnswer(env signal.Envelope) {
	answer, err := env.SessionDescription()
	if err != nil {
		log.Error().Err(err).Str("module", "app.negotiator").Msg("bad answer payload")
		return
	}
	if err := n.media.ApplyAnswer(answer); err != nil {
		log.Error().Err(err).Str("module", "app.negotiator").Msg("apply answer")
		return
	}
	n.remoteSet = true
	n.flushPending()
}

// HandleCandidate applies a remote candidate, buffering it if no remote
// description is set yet. Parse or apply failures never change state.
func (n *negotiator) HandleCandidate(env signal.Envelope) {
	ci, err := env.Candidate()
	if err != nil {
		log.Error().Err(err).Str("module", "app.negotiator").Msg("bad candidate payload")
		return
	}
	if !n.remoteSet {
		n.pending = append(n.pending, ci)
		log.Debug().Str("module", "app.negotiator").Int("pending", len(n.pending)).Msg("candidate buffered")
		return
	}
	if err := n.media.AddICECandidate(ci); err != nil {
		log.Error().Err(err).Str("module", "app.negotiator").Msg("add ice candidate")
	}
}

// HandleLocalCandidate ships a locally gathered candidate immediately.
// Each candidate is its own envelope; no batching.
func (n *negotiator) HandleLocalCandidate(ci webrtc.ICECandidateInit) {
	env, err := signal.Candidate(ci)
	if err != nil {
		log.Error().Err(err).Str("module", "app.negotiator").Msg("encode candidate")
		return
	}
	n.send(env)
}

func (n *negotiator) flushPending() {
	for _, ci := range n.pending {
		if err := n.media.AddICECandidate(ci); err != nil {
			log.Error().Err(err).Str("module", "app.negotiator").Msg("apply buffered candidate")
		}
	}
	n.pending = nil
}

func (n *negotiator) CloseState() {
	n.state = NegClosed
}
