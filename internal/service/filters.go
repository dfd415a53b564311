package service

import (
	"time"

	"garden_panel/internal/models"
)

// LogFilter selects activity events by time range, type and zone.
type LogFilter struct {
	From   time.Time     // inclusive; zero means no lower bound
	To     time.Time     // inclusive; zero means no upper bound
	Type   string        // "", "ZONE_ADDED", "START", "STOP", "COMMAND_ERROR", "LOAD_ERROR"
	ZoneID models.ZoneID // "" means every zone
}
