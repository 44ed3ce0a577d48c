// Package capture acquires local audio/video tracks through
// pion/mediadevices.
package capture

import (
	"context"
	"fmt"

	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/codec/opus"
	"github.com/pion/mediadevices/pkg/codec/vpx"
	_ "github.com/pion/mediadevices/pkg/driver/camera"     // register camera driver
	_ "github.com/pion/mediadevices/pkg/driver/microphone" // register microphone driver
	"github.com/pion/mediadevices/pkg/prop"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
)

const videoBitRate = 1_000_000

// Opener implements core.CaptureOpener on top of the local camera and
// microphone.
type Opener struct {
	selector *mediadevices.CodecSelector
}

func NewOpener() (*Opener, error) {
	vpxParams, err := vpx.NewVP8Params()
	if err != nil {
		return nil, fmt.Errorf("vp8 params: %w", err)
	}
	vpxParams.BitRate = videoBitRate

	opusParams, err := opus.NewParams()
	if err != nil {
		return nil, fmt.Errorf("opus params: %w", err)
	}

	return &Opener{
		selector: mediadevices.NewCodecSelector(
			mediadevices.WithVideoEncoders(&vpxParams),
			mediadevices.WithAudioEncoders(&opusParams),
		),
	}, nil
}

// Populate registers the capture codecs on the media engine the peer
// connection is built from. Must be wired into the rtc factory.
func (o *Opener) Populate(m *webrtc.MediaEngine) error {
	o.selector.Populate(m)
	return nil
}

func (o *Opener) Open(_ context.Context, c core.CaptureConstraints) (core.CaptureDevice, error) {
	constraints := mediadevices.MediaStreamConstraints{
		Video: func(mc *mediadevices.MediaTrackConstraints) {
			mc.Width = prop.Int(c.Width)
			mc.Height = prop.Int(c.Height)
		},
		Codec: o.selector,
	}
	if c.Audio {
		constraints.Audio = func(mc *mediadevices.MediaTrackConstraints) {}
	}

	stream, err := mediadevices.GetUserMedia(constraints)
	if err != nil {
		return nil, fmt.Errorf("get user media: %w", err)
	}
	log.Info().Str("module", "capture").Int("tracks", len(stream.GetTracks())).Msg("capture acquired")
	return &device{stream: stream}, nil
}

type device struct {
	stream mediadevices.MediaStream
}

func (d *device) Tracks() []webrtc.TrackLocal {
	tracks := d.stream.GetTracks()
	out := make([]webrtc.TrackLocal, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, t)
	}
	return out
}

// Close stops every capture track; track errors do not stop the sweep.
func (d *device) Close() error {
	var firstErr error
	for _, t := range d.stream.GetTracks() {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
