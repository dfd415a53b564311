package models

import "time"

// Activity event types.
const (
	EventZoneAdded    = "ZONE_ADDED"
	EventStart        = "START"
	EventStop         = "STOP"
	EventCommandError = "COMMAND_ERROR"
	EventLoadError    = "LOAD_ERROR"
)

// ActivityEvent is a single entry of the dashboard's activity log.
type ActivityEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	ZoneID      ZoneID    `json:"zone_id,omitempty"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
