package core

import "context"

// RoomChecker is the room verification collaborator. A nil error means
// the room exists and the password matched.
type RoomChecker interface {
	CheckRoom(ctx context.Context, room, password, identity string) error
}
