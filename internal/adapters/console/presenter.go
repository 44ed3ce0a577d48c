// Package console renders status, transcript and slot events for the
// headless client.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

type Presenter struct {
	out io.Writer
}

func New() *Presenter {
	return &Presenter{out: os.Stdout}
}

func (p *Presenter) Status(text string) {
	fmt.Fprintf(p.out, "[status] %s\n", text)
}

func (p *Presenter) Alert(text string) {
	fmt.Fprintf(p.out, "[alert] %s\n", text)
}

func (p *Presenter) AppendMessage(m domain.ChatMessage) {
	fmt.Fprintf(p.out, "[%s] %s: %s\n", m.Timestamp.Format("15:04"), m.Sender, m.Text)
}

func (p *Presenter) ResetTranscript() {}

func (p *Presenter) ClearCompose() {}

func (p *Presenter) CreateSlot(id core.SlotID, identity, streamID string) {
	log.Info().Str("module", "console").Str("slot", string(id)).Str("identity", identity).Str("stream_id", streamID).Msg("slot created")
}

func (p *Presenter) UpdateSlot(id core.SlotID, streamID string) {
	log.Info().Str("module", "console").Str("slot", string(id)).Str("stream_id", streamID).Msg("slot updated")
}

func (p *Presenter) RemoveSlot(id core.SlotID) {
	log.Info().Str("module", "console").Str("slot", string(id)).Msg("slot removed")
}
