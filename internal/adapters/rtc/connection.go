// Package rtc wraps pion/webrtc as the media transport session.
package rtc

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/pion/logging"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
)

const keyFrameInterval = 3 * time.Second

var (
	remoteTrackBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meet_remote_track_bytes_total",
		Help: "Bytes of RTP received from remote tracks.",
	}, []string{"kind"})

	remoteTrackGaps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meet_remote_track_seq_gaps_total",
		Help: "RTP sequence number gaps observed on remote tracks.",
	}, []string{"kind"})
)

func DefaultConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

// Factory builds one Connection per room session.
type Factory struct {
	cfg webrtc.Configuration
	// populate registers capture codecs on the media engine, when a
	// capture collaborator is wired in.
	populate func(*webrtc.MediaEngine) error
}

func NewFactory(cfg webrtc.Configuration, populate func(*webrtc.MediaEngine) error) *Factory {
	return &Factory{cfg: cfg, populate: populate}
}

func (f *Factory) New() (core.MediaConnection, error) {
	m := &webrtc.MediaEngine{}
	if err := m.RegisterDefaultCodecs(); err != nil {
		return nil, err
	}
	if f.populate != nil {
		if err := f.populate(m); err != nil {
			return nil, err
		}
	}
	se := webrtc.SettingEngine{}
	se.LoggerFactory = logging.NewDefaultLoggerFactory()
	api := webrtc.NewAPI(webrtc.WithMediaEngine(m), webrtc.WithSettingEngine(se))
	pc, err := api.NewPeerConnection(f.cfg)
	if err != nil {
		return nil, err
	}
	return &Connection{pc: pc}, nil
}

type Connection struct {
	pc     *webrtc.PeerConnection
	cancel context.CancelFunc

	onICE        func(webrtc.ICECandidateInit)
	onTrack      func(core.RemoteTrack)
	onTrackEnded func(core.RemoteTrack)
	onClosed     func()
}

func (c *Connection) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		log.Info().Str("module", "rtc").Str("ice_state", s.String()).Msg("ICE state")
		if s == webrtc.ICEConnectionStateDisconnected ||
			s == webrtc.ICEConnectionStateFailed ||
			s == webrtc.ICEConnectionStateClosed {
			cancel()
		}
	})

	c.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "rtc").Str("peer_connection_state", s.String()).Msg("Peer state")
		if s == webrtc.PeerConnectionStateFailed ||
			s == webrtc.PeerConnectionStateClosed {
			if c.onClosed != nil {
				c.onClosed()
			}
		}
	})

	c.pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand != nil && c.onICE != nil {
			c.onICE(cand.ToJSON())
		}
	})

	c.pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		rt := core.RemoteTrack{
			ID:       track.ID(),
			StreamID: track.StreamID(),
			Kind:     track.Kind().String(),
		}
		log.Info().
			Str("module", "rtc").
			Str("kind", rt.Kind).
			Str("track_id", rt.ID).
			Str("stream_id", rt.StreamID).
			Msg("OnTrack received")
		if c.onTrack != nil {
			c.onTrack(rt)
		}
		go c.pumpTrack(ctx, track, rt)
	})

	return nil
}

// pumpTrack drains RTP from a remote track and reports its end. Video
// tracks get a periodic PLI so a joining peer receives a key frame.
func (c *Connection) pumpTrack(ctx context.Context, track *webrtc.TrackRemote, rt core.RemoteTrack) {
	if track.Kind() == webrtc.RTPCodecTypeVideo {
		go func() {
			ticker := time.NewTicker(keyFrameInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					err := c.pc.WriteRTCP([]rtcp.Packet{
						&rtcp.PictureLossIndication{MediaSSRC: uint32(track.SSRC())},
					})
					if err != nil {
						return
					}
				}
			}
		}()
	}

	var acc rtpAccounting
	for {
		pkt, _, err := track.ReadRTP()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug().Err(err).Str("module", "rtc").Str("track_id", rt.ID).Msg("track read ended")
			}
			if c.onTrackEnded != nil {
				c.onTrackEnded(rt)
			}
			return
		}
		acc.observe(pkt, rt.Kind)
	}
}

// rtpAccounting tallies bytes and sequence gaps for one remote track.
type rtpAccounting struct {
	lastSeq uint16
	seen    bool
}

func (a *rtpAccounting) observe(pkt *rtp.Packet, kind string) {
	remoteTrackBytes.WithLabelValues(kind).Add(float64(pkt.MarshalSize()))
	if a.seen && pkt.SequenceNumber != a.lastSeq+1 {
		remoteTrackGaps.WithLabelValues(kind).Inc()
	}
	a.lastSeq = pkt.SequenceNumber
	a.seen = true
}

func (c *Connection) ApplyOfferAndCreateAnswer(offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	if err := c.pc.SetRemoteDescription(offer); err != nil {
		return nil, err
	}
	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}
	// Trickle ICE: candidates go out as separate envelopes, no need to
	// wait for gathering here.
	if err := c.pc.SetLocalDescription(answer); err != nil {
		return nil, err
	}
	return c.pc.LocalDescription(), nil
}

func (c *Connection) ApplyAnswer(answer webrtc.SessionDescription) error {
	return c.pc.SetRemoteDescription(answer)
}

func (c *Connection) AddICECandidate(ci webrtc.ICECandidateInit) error {
	return c.pc.AddICECandidate(ci)
}

// AttachLocalTrack adds a capture track under its composite identifier
// and drains sender RTCP so interceptors keep running.
func (c *Connection) AttachLocalTrack(identity string, track webrtc.TrackLocal) error {
	sender, err := c.pc.AddTrack(newTaggedTrack(identity, track))
	if err != nil {
		return err
	}
	go func() {
		buf := make([]byte, 1500)
		for {
			if _, _, err := sender.Read(buf); err != nil {
				return
			}
		}
	}()
	return nil
}

func (c *Connection) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.pc != nil {
		if err := c.pc.Close(); err != nil {
			log.Error().Err(err).Str("module", "rtc").Msg("close error")
		} else {
			log.Info().Str("module", "rtc").Msg("closed")
		}
	}
}

func (c *Connection) OnICECandidate(fn func(webrtc.ICECandidateInit)) { c.onICE = fn }

func (c *Connection) OnTrack(fn func(core.RemoteTrack)) { c.onTrack = fn }

func (c *Connection) OnTrackEnded(fn func(core.RemoteTrack)) { c.onTrackEnded = fn }

func (c *Connection) OnClosed(fn func()) { c.onClosed = fn }
