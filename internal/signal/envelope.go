// Package signal defines the typed envelopes exchanged over the
// signaling channel and their JSON codec.
package signal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Meet/internal/domain"
)

// Recognized envelope event kinds. Unknown kinds are not a decode
// error; the receiver logs and ignores them.
const (
	EventOffer       = "offer"
	EventAnswer      = "answer"
	EventCandidate   = "candidate"
	EventChat        = "chat"
	EventChatHistory = "chat_history"
)

var (
	ErrMalformedEnvelope = errors.New("malformed envelope")
	ErrMalformedPayload  = errors.New("malformed payload")
)

// Envelope is the wire message. Data carries a serialized sub-structure
// for offer/answer/candidate/chat_history; chat uses Sender and Text
// directly.
type Envelope struct {
	Event  string `json:"event"`
	Data   string `json:"data,omitempty"`
	Sender string `json:"sender,omitempty"`
	Text   string `json:"text,omitempty"`
}

func Decode(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if e.Event == "" {
		return Envelope{}, fmt.Errorf("%w: missing event", ErrMalformedEnvelope)
	}
	return e, nil
}

func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// SessionDescription performs the secondary decode of an offer or
// answer payload.
func (e Envelope) SessionDescription() (webrtc.SessionDescription, error) {
	var sd webrtc.SessionDescription
	if err := json.Unmarshal([]byte(e.Data), &sd); err != nil {
		return webrtc.SessionDescription{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return sd, nil
}

// Candidate performs the secondary decode of a candidate payload.
func (e Envelope) Candidate() (webrtc.ICECandidateInit, error) {
	var ci webrtc.ICECandidateInit
	if err := json.Unmarshal([]byte(e.Data), &ci); err != nil {
		return webrtc.ICECandidateInit{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return ci, nil
}

// ChatHistory decodes the ordered transcript batch sent on join.
func (e Envelope) ChatHistory() ([]domain.ChatMessage, error) {
	var history []domain.ChatMessage
	if err := json.Unmarshal([]byte(e.Data), &history); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return history, nil
}

func Answer(sd webrtc.SessionDescription) (Envelope, error) {
	data, err := json.Marshal(sd)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: EventAnswer, Data: string(data)}, nil
}

func Offer(sd webrtc.SessionDescription) (Envelope, error) {
	data, err := json.Marshal(sd)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: EventOffer, Data: string(data)}, nil
}

func Candidate(ci webrtc.ICECandidateInit) (Envelope, error) {
	data, err := json.Marshal(ci)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: EventCandidate, Data: string(data)}, nil
}

func Chat(sender, text string) Envelope {
	return Envelope{Event: EventChat, Sender: sender, Text: text}
}
