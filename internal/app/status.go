package app

import "github.com/dkeye/Meet/internal/domain"

// Status strings surfaced through the presentation bridge.
const (
	StatusConnecting      = "Connecting to room..."
	StatusDisconnected    = "Disconnected"
	StatusChannelClosed   = "Disconnected from room"
	StatusConnectionError = "Connection error"
	StatusMediaError      = "Media access error"
	StatusJoinFailed      = "Failed to join room"
)

func StatusConnected(room domain.RoomName) string {
	return "Connected to room: " + string(room)
}
