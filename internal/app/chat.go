package app

import "github.com/dkeye/Meet/internal/domain"

// transcriptCap mirrors the relay's own history limit.
const transcriptCap = 100

// transcript is the append-only chat log. Display order is arrival
// order: the history batch first, then live messages. No re-sorting by
// timestamp.
type transcript struct {
	msgs []domain.ChatMessage
}

func (t *transcript) Append(m domain.ChatMessage) {
	t.msgs = append(t.msgs, m)
	if len(t.msgs) > transcriptCap {
		t.msgs = t.msgs[len(t.msgs)-transcriptCap:]
	}
}

func (t *transcript) Messages() []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(t.msgs))
	copy(out, t.msgs)
	return out
}
