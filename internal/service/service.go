package service

import (
	"context"
	"time"

	"garden_panel/internal/logger"
	"garden_panel/internal/models"
	"garden_panel/internal/panel"
	"garden_panel/internal/repository"
	"garden_panel/internal/telemetry"
)

// ZoneSource is the remote garden controller. *client.ZoneClient implements it.
type ZoneSource interface {
	ListZones(ctx context.Context) (models.ZoneFeed, error)
	StartZone(ctx context.Context, id models.ZoneID, runLength time.Duration) error
	StopZone(ctx context.Context, id models.ZoneID) error
}

// Zones exposes the reconciled zone panels to the HTTP layer.
type Zones interface {
	Load(ctx context.Context) error
	Snapshot() []models.ZoneRecord
	Zone(id models.ZoneID) (models.ZoneRecord, bool)
	Start(ctx context.Context, id models.ZoneID, runLength time.Duration) error
	Stop(ctx context.Context, id models.ZoneID) error
	Press(ctx context.Context, id models.ZoneID, index int) error
	RenderHTML() string
	Frame() ZoneFrame
	RenderPage() (string, error)
}

// Poller refreshes the zones on a fixed cadence until ctx is canceled.
type Poller interface {
	Run(ctx context.Context, interval time.Duration)
}

// EventLog exposes the activity log with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ActivityEvent, error)
}

// Service aggregates the sub-services used by the handlers.
type Service struct {
	Zones
	Poller
	EventLog
}

// Deps carries the collaborators NewService cannot build itself.
type Deps struct {
	Source            ZoneSource
	Templates         panel.Renderer
	Metrics           telemetry.Collector
	Log               *logger.Logger
	DiscardStaleFeeds bool
	Title             string
}

// NewService wires the controller, poller and activity log.
func NewService(repos *repository.Repository, deps Deps) *Service {
	controller := NewController(deps.Source, deps.Templates, repos.EventRepo,
		WithMetrics(deps.Metrics),
		WithLogger(deps.Log),
		WithDiscardStaleFeeds(deps.DiscardStaleFeeds),
		WithTitle(deps.Title),
	)
	return &Service{
		Zones:    controller,
		Poller:   NewPollerService(controller, deps.Log),
		EventLog: NewEventLogService(repos.EventRepo),
	}
}
