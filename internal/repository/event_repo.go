package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"garden_panel/internal/models"

	"github.com/google/uuid"
)

// timeLayout is fixed-width so text comparison orders like time.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const (
	insertEventSQL = `INSERT INTO activity_events (id, occurred_at, type, zone_id, message, meta) VALUES (?, ?, ?, ?, ?, ?)`
	trimEventsSQL  = `DELETE FROM activity_events WHERE seq NOT IN (SELECT seq FROM activity_events ORDER BY seq DESC LIMIT ?)`
	selectEventSQL = `SELECT id, occurred_at, type, zone_id, message, meta FROM activity_events`
	orderEventSQL  = ` ORDER BY occurred_at ASC, seq ASC`
)

// EventSQLite keeps the newest capacity events in SQLite.
type EventSQLite struct {
	db       *sql.DB
	capacity int
}

func NewEventSQLite(db *sql.DB, capacity int) *EventSQLite {
	if capacity <= 0 {
		capacity = DefaultEventCapacity
	}
	return &EventSQLite{db: db, capacity: capacity}
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

// Append inserts e and evicts the oldest rows beyond capacity. A missing
// EventID or OccurredAt is filled in.
func (r *EventSQLite) Append(ctx context.Context, e models.ActivityEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		formatTime(e.OccurredAt),
		strings.ToUpper(strings.TrimSpace(e.Type)),
		string(e.ZoneID),
		e.Description,
		metaPtr,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, trimEventsSQL, r.capacity); err != nil {
		return fmt.Errorf("trim events: %w", err)
	}
	return nil
}

// List returns events filtered by [from, to] (inclusive), type and zone, oldest first.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string, zoneID models.ZoneID) ([]models.ActivityEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, formatTime(from))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, formatTime(to))
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}
	if zoneID != "" {
		conds = append(conds, "zone_id = ?")
		args = append(args, string(zoneID))
	}

	q := selectEventSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += orderEventSQL

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ActivityEvent, 0, 64)
	for rows.Next() {
		var (
			ev       models.ActivityEvent
			occurred string
			zone     string
			metaStr  sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &occurred, &ev.Type, &zone, &ev.Description, &metaStr); err != nil {
			return nil, err
		}
		ev.OccurredAt, err = time.Parse(timeLayout, occurred)
		if err != nil {
			return nil, fmt.Errorf("event %s: occurred_at: %w", ev.EventID, err)
		}
		ev.ZoneID = models.ZoneID(zone)

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
