package core

import "github.com/dkeye/Meet/internal/domain"

// SlotID is the handle of one per-participant render slot.
type SlotID string

// Presenter is the status/presentation bridge: the only UI-facing side
// channel of the core. Rendering itself is outside core scope.
type Presenter interface {
	// Status replaces the status line.
	Status(text string)
	// Alert surfaces an initiation-time failure at alert level.
	Alert(text string)

	AppendMessage(msg domain.ChatMessage)
	ResetTranscript()
	// ClearCompose empties the message compose field after a send.
	ClearCompose()

	CreateSlot(id SlotID, identity, streamID string)
	UpdateSlot(id SlotID, streamID string)
	RemoveSlot(id SlotID)
}
