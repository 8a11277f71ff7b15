package websocket

import (
	"encoding/json"
	"time"

	"github.com/snake-leaderboard/internal/domain"
)

// Message types
const (
	MessageTypeLeaderboardUpdate = "leaderboard_update"
	MessageTypeSubscribe         = "subscribe"
	MessageTypeUnsubscribe       = "unsubscribe"
	MessageTypeSubscribed        = "subscribed"
	MessageTypeUnsubscribed      = "unsubscribed"
	MessageTypePing              = "ping"
	MessageTypePong              = "pong"
	MessageTypeError             = "error"
)

// ChannelLeaderboard carries leaderboard snapshots
const ChannelLeaderboard = "leaderboard"

// Message is a server to client frame
type Message struct {
	Type      string    `json:"type"`
	Channel   string    `json:"channel,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage is a client to server frame
type ClientMessage struct {
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
}

// LeaderboardUpdate is the payload of a leaderboard_update message
type LeaderboardUpdate struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
}

func errorMessage(text string) Message {
	return Message{Type: MessageTypeError, Data: map[string]string{"error": text}}
}

// encode stamps msg with the current time when it has none
func encode(msg Message) ([]byte, error) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	return json.Marshal(msg)
}
