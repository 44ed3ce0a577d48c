package domain

import "time"

// ChatMessage is one entry of the room transcript. Sent messages carry
// local clock time; replayed history keeps the relay's timestamps.
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
