package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Zone record defaults. A decoded record starts from these values.
const DefaultZoneName = "unknown"

// DefaultRunTemplate lists the quick-start run lengths offered for a zone.
func DefaultRunTemplate() []string {
	return []string{"5m", "10m", "15m"}
}

// ZoneID is an opaque zone identifier. The garden API sends strings, but a
// numeric JSON id is accepted and kept as its literal text.
type ZoneID string

func (id *ZoneID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ZoneID(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("zone id must be a string or number: %w", err)
	}
	*id = ZoneID(n.String())
	return nil
}

// ZoneRecord is the last server-reported state of one zone.
type ZoneRecord struct {
	ID          ZoneID        `json:"id"`
	Name        string        `json:"name"`
	IsOn        bool          `json:"is_on"`
	IsRunning   bool          `json:"is_running"`
	Runtime     time.Duration `json:"runtime"` // nanoseconds on the wire
	NextRun     *time.Time    `json:"next_run"`
	RunTemplate []string      `json:"run_template"`
}

// NewZoneRecord returns a record holding the defaults for the given id.
func NewZoneRecord(id ZoneID) ZoneRecord {
	return ZoneRecord{
		ID:          id,
		Name:        DefaultZoneName,
		RunTemplate: DefaultRunTemplate(),
	}
}

// UnmarshalJSON overlays the payload on a fresh default record, so fields
// absent from the payload take their defaults.
func (z *ZoneRecord) UnmarshalJSON(b []byte) error {
	type plain ZoneRecord
	rec := plain(NewZoneRecord(""))
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	*z = ZoneRecord(rec)
	return nil
}

// Clone returns a deep copy, so callers cannot alias panel state.
func (z ZoneRecord) Clone() ZoneRecord {
	out := z
	if z.NextRun != nil {
		t := *z.NextRun
		out.NextRun = &t
	}
	if z.RunTemplate != nil {
		out.RunTemplate = append([]string(nil), z.RunTemplate...)
	}
	return out
}

// ZoneFeed is the body of GET /zone/.
type ZoneFeed struct {
	Status string       `json:"status,omitempty"`
	Error  string       `json:"error,omitempty"`
	Zones  []ZoneRecord `json:"zones"`
}
