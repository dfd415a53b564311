package repository

import (
	"context"
	"database/sql"
	"time"

	"garden_panel/internal/models"
)

// DefaultEventCapacity bounds the activity log when no capacity is configured.
const DefaultEventCapacity = 500

type EventRepo interface {
	Append(ctx context.Context, e models.ActivityEvent) error
	List(ctx context.Context, from, to time.Time, typ string, zoneID models.ZoneID) ([]models.ActivityEvent, error)
}

type Repository struct {
	EventRepo EventRepo
}

func NewRepository(db *sql.DB, eventCapacity int) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db, eventCapacity),
	}
}
