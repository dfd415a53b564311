package service

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"sync"
	"time"

	"garden_panel/internal/logger"
	"garden_panel/internal/models"
	"garden_panel/internal/panel"
	"garden_panel/internal/repository"
	"garden_panel/internal/telemetry"
	"garden_panel/internal/templates"
	"garden_panel/internal/view"
)

const (
	// ContainerID is the id of the region every zone panel renders into.
	ContainerID = "zones-root"
	// DefaultTitle heads the dashboard page.
	DefaultTitle = "Garden zones"
	// StreamPath is where the dashboard page opens its websocket.
	StreamPath = "/ws"

	actionStart = "start"
	actionStop  = "stop"
)

var (
	ErrZoneNotFound       = errors.New("zone not found")
	errPageUnavailable    = errors.New("page template unavailable")
	errControllerNoSource = errors.New("zone source is not configured")
)

type ControllerOption func(*Controller)

func WithMetrics(m telemetry.Collector) ControllerOption {
	return func(c *Controller) {
		if m != nil {
			c.metrics = m
		}
	}
}

func WithLogger(log *logger.Logger) ControllerOption {
	return func(c *Controller) { c.log = logger.OrNop(log) }
}

func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithDiscardStaleFeeds drops a feed that completes after a newer one was applied.
func WithDiscardStaleFeeds(on bool) ControllerOption {
	return func(c *Controller) { c.discardStale = on }
}

func WithTitle(title string) ControllerOption {
	return func(c *Controller) {
		if title != "" {
			c.title = title
		}
	}
}

// Controller reconciles the remote zone feed into one panel per zone id.
// All panels share one container. mu guards zones, container and applied;
// it is never held across a call to the source.
type Controller struct {
	source    ZoneSource
	templates panel.Renderer
	events    repository.EventRepo
	metrics   telemetry.Collector
	log       *logger.Logger
	now       func() time.Time

	discardStale bool
	title        string

	mu        sync.Mutex
	zones     map[models.ZoneID]*panel.Panel
	container *view.Container
	seq       uint64
	applied   uint64
}

func NewController(source ZoneSource, tmpl panel.Renderer, events repository.EventRepo, opts ...ControllerOption) *Controller {
	c := &Controller{
		source:       source,
		templates:    tmpl,
		events:       events,
		metrics:      telemetry.Noop(),
		log:          logger.Nop(),
		now:          time.Now,
		discardStale: true,
		title:        DefaultTitle,
		zones:        make(map[models.ZoneID]*panel.Panel),
		container:    view.NewContainer(ContainerID),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddZone updates the panel for rec.ID, creating it on first sight.
func (c *Controller) AddZone(rec models.ZoneRecord) *panel.Panel {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.addZone(rec)
	c.metrics.SetZones(len(c.zones))
	return p
}

// ProcessZones applies every record of feed under one lock.
func (c *Controller) ProcessZones(feed models.ZoneFeed) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processZones(feed)
}

func (c *Controller) processZones(feed models.ZoneFeed) {
	for _, rec := range feed.Zones {
		c.addZone(rec)
	}
	c.metrics.SetZones(len(c.zones))
}

func (c *Controller) addZone(rec models.ZoneRecord) *panel.Panel {
	if p, ok := c.zones[rec.ID]; ok {
		return p.Update(rec)
	}
	p := panel.New(rec.ID, c.container, c.templates, c.commandsFor(rec.ID),
		panel.WithClock(c.now),
		panel.WithLogger(c.log),
	)
	c.zones[rec.ID] = p
	c.log.Infow("zone_added", "zone", rec.ID, "name", rec.Name)
	c.record(context.Background(), models.ActivityEvent{
		Type:        models.EventZoneAdded,
		ZoneID:      rec.ID,
		Description: fmt.Sprintf("Zone %q added", rec.Name),
	})
	return p.Update(rec)
}

// Load fetches the zone list and applies it. On failure the panels are left
// as they were.
func (c *Controller) Load(ctx context.Context) error {
	if c.source == nil {
		return errControllerNoSource
	}
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	feed, err := c.source.ListZones(ctx)
	if err != nil {
		c.log.Errorw("zones_load_failed", "seq", seq, "err", err)
		c.metrics.IncLoad(telemetry.ResultError)
		c.record(ctx, models.ActivityEvent{
			Type:        models.EventLoadError,
			Description: "Zone list fetch failed",
			Metadata:    map[string]any{"error": err.Error()},
		})
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.discardStale && seq < c.applied {
		c.log.Debugw("zones_feed_stale", "seq", seq, "applied", c.applied)
		c.metrics.IncLoad(telemetry.ResultStale)
		return nil
	}
	c.applied = seq
	c.processZones(feed)
	c.metrics.IncLoad(telemetry.ResultOK)
	c.log.Debugw("zones_loaded", "seq", seq, "zones", len(feed.Zones))
	return nil
}

// Snapshot returns a copy of every zone record, sorted by id.
func (c *Controller) Snapshot() []models.ZoneRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// ZoneFrame is the rendered panels together with the records they were
// rendered from.
type ZoneFrame struct {
	HTML  string              `json:"html"`
	Zones []models.ZoneRecord `json:"zones"`
}

// Frame returns the panel markup and the records under one lock, so both
// come from the same feed.
func (c *Controller) Frame() ZoneFrame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ZoneFrame{HTML: c.container.InnerHTML(), Zones: c.snapshot()}
}

func (c *Controller) snapshot() []models.ZoneRecord {
	out := make([]models.ZoneRecord, 0, len(c.zones))
	for _, p := range c.zones {
		out = append(out, p.Record())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Controller) Zone(id models.ZoneID) (models.ZoneRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.zones[id]
	if !ok {
		return models.ZoneRecord{}, false
	}
	return p.Record(), true
}

func (c *Controller) panel(id models.ZoneID) (*panel.Panel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.zones[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}
	return p, nil
}

// Start asks the server to run zone id for runLength. Zero means the
// server default.
func (c *Controller) Start(ctx context.Context, id models.ZoneID, runLength time.Duration) error {
	p, err := c.panel(id)
	if err != nil {
		return err
	}
	return p.DoStart(ctx, runLength)
}

func (c *Controller) Stop(ctx context.Context, id models.ZoneID) error {
	p, err := c.panel(id)
	if err != nil {
		return err
	}
	return p.DoStop(ctx)
}

// Press runs the handler bound to button index of zone id by its last render.
func (c *Controller) Press(ctx context.Context, id models.ZoneID, index int) error {
	c.mu.Lock()
	p, ok := c.zones[id]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}
	action, ok := p.Action(index)
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w %d for zone %s", panel.ErrNoAction, index, id)
	}
	return action(ctx)
}

// RenderHTML returns the markup of every zone panel.
func (c *Controller) RenderHTML() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.container.InnerHTML()
}

type pageView struct {
	Title      string
	Zones      template.HTML
	StreamPath string
}

// RenderPage wraps the zone panels in the dashboard page.
func (c *Controller) RenderPage() (string, error) {
	out, ok := c.templates.Render(templates.Page, pageView{
		Title:      c.title,
		Zones:      template.HTML(c.RenderHTML()),
		StreamPath: StreamPath,
	})
	if !ok {
		return "", errPageUnavailable
	}
	return out, nil
}

func (c *Controller) commandsFor(id models.ZoneID) panel.Commands {
	return panel.Commands{
		Start: func(ctx context.Context, runLength time.Duration) error {
			return c.command(ctx, id, actionStart, runLength, func(ctx context.Context) error {
				return c.source.StartZone(ctx, id, runLength)
			})
		},
		Stop: func(ctx context.Context) error {
			return c.command(ctx, id, actionStop, 0, func(ctx context.Context) error {
				return c.source.StopZone(ctx, id)
			})
		},
	}
}

// command sends one start or stop request. Success triggers a reload so the
// panel reflects what the server now reports. Local state is never changed
// directly.
func (c *Controller) command(ctx context.Context, id models.ZoneID, action string, runLength time.Duration, send func(context.Context) error) error {
	if c.source == nil {
		return errControllerNoSource
	}
	meta := map[string]any{"action": action}
	if runLength > 0 {
		meta["run_length"] = runLength.String()
	}

	if err := send(ctx); err != nil {
		c.log.Errorw("zone_command_failed", "zone", id, "action", action, "err", err)
		c.metrics.IncCommand(action, telemetry.ResultError)
		meta["error"] = err.Error()
		c.record(ctx, models.ActivityEvent{
			Type:        models.EventCommandError,
			ZoneID:      id,
			Description: fmt.Sprintf("%s command failed", action),
			Metadata:    meta,
		})
		return err
	}

	c.log.Infow("zone_command_sent", "zone", id, "action", action, "run_length", runLength)
	c.metrics.IncCommand(action, telemetry.ResultOK)
	typ, desc := models.EventStart, "Zone started"
	if action == actionStop {
		typ, desc = models.EventStop, "Zone stopped"
	}
	c.record(ctx, models.ActivityEvent{Type: typ, ZoneID: id, Description: desc, Metadata: meta})

	if err := c.Load(ctx); err != nil {
		c.log.Warnw("zone_reload_after_command_failed", "zone", id, "err", err)
	}
	return nil
}

// record appends to the activity log. Append failures are logged only.
func (c *Controller) record(ctx context.Context, e models.ActivityEvent) {
	if c.events == nil {
		return
	}
	if err := c.events.Append(context.WithoutCancel(ctx), e); err != nil {
		c.log.Warnw("activity_append_failed", "type", e.Type, "zone", e.ZoneID, "err", err)
	}
}
