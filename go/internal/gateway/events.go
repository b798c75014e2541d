package gateway

import (
	"encoding/json"
	"time"
)

// Event is the outbound envelope pushed to every connected client
type Event struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Timestamp time.Time `json:"ts"`
	Data      any       `json:"data,omitempty"`
}

// Inbound event names the capture and moderator clients may send
const (
	EventGameTrigger     = "game_trigger"
	EventTriggerSnapshot = "trigger_snapshot"
	EventScanTimeout     = "scan_timeout"
	EventScanComplete    = "scan_complete"
)

// ClientMessage is an inbound message from a websocket client
type ClientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}
