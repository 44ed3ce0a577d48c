// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const (
	MaxIdentityLen = 36

	// DefaultIdentity is used when the joining user leaves the name blank.
	DefaultIdentity = "Guest"
	// DefaultRemoteIdentity is used when a composite track identifier
	// carries no parsable identity prefix.
	DefaultRemoteIdentity = "Participant"
)

var (
	ErrRoomNameEmpty   = errors.New("room name empty")
	ErrPasswordEmpty   = errors.New("room password empty")
	ErrIdentityTooLong = errors.New("identity too long")
	ErrIdentityInvalid = errors.New("identity must not contain '_'")
)

type RoomName string

// Participant is the display/attribution label of a session member.
// Not guaranteed unique across the room.
type Participant struct {
	Identity string
}

// NewParticipant normalizes and validates a user-chosen identity.
// Blank identities fall back to DefaultIdentity. Identities containing
// '_' are rejected because '_' separates identity from raw track ID in
// composite track identifiers.
func NewParticipant(identity string) (Participant, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		identity = DefaultIdentity
	}
	if len(identity) > MaxIdentityLen {
		return Participant{}, ErrIdentityTooLong
	}
	if strings.Contains(identity, "_") {
		return Participant{}, ErrIdentityInvalid
	}
	return Participant{Identity: identity}, nil
}

// CompositeTrackID tags a raw track identifier with the producer's
// identity so receivers can attribute the track without extra signaling.
func CompositeTrackID(identity, rawID string) string {
	return identity + "_" + rawID
}

// IdentityFromTrackID recovers the identity prefix from a composite
// track identifier: everything before the first '_'.
func IdentityFromTrackID(trackID string) string {
	head, _, _ := strings.Cut(trackID, "_")
	if head == "" {
		return DefaultRemoteIdentity
	}
	return head
}
