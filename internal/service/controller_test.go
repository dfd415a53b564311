package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"garden_panel/internal/models"
	"garden_panel/internal/panel"
	"garden_panel/internal/telemetry"
	"garden_panel/internal/templates"

	"github.com/stretchr/testify/require"
)

type startCall struct {
	id        models.ZoneID
	runLength time.Duration
}

// fakeSource is a scripted garden controller.
type fakeSource struct {
	mu       sync.Mutex
	listFn   func(call int) (models.ZoneFeed, error)
	lists    int
	starts   []startCall
	stops    []models.ZoneID
	startErr error
	stopErr  error
}

func (f *fakeSource) ListZones(ctx context.Context) (models.ZoneFeed, error) {
	f.mu.Lock()
	f.lists++
	call := f.lists
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		return models.ZoneFeed{Status: "success"}, nil
	}
	return fn(call)
}

func (f *fakeSource) StartZone(ctx context.Context, id models.ZoneID, runLength time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, startCall{id: id, runLength: runLength})
	return f.startErr
}

func (f *fakeSource) StopZone(ctx context.Context, id models.ZoneID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops = append(f.stops, id)
	return f.stopErr
}

func (f *fakeSource) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

// countingCollector counts metric updates by label.
type countingCollector struct {
	mu       sync.Mutex
	loads    map[string]int
	commands map[string]int
	zones    int
}

func newCountingCollector() *countingCollector {
	return &countingCollector{loads: map[string]int{}, commands: map[string]int{}}
}

func (c *countingCollector) IncLoad(result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads[result]++
}

func (c *countingCollector) IncCommand(action, result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands[action+"/"+result]++
}

func (c *countingCollector) SetZones(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zones = n
}

var _ telemetry.Collector = (*countingCollector)(nil)

func zone(id models.ZoneID, name string, mutate func(*models.ZoneRecord)) models.ZoneRecord {
	r := models.NewZoneRecord(id)
	r.Name = name
	if mutate != nil {
		mutate(&r)
	}
	return r
}

func feedOf(zones ...models.ZoneRecord) models.ZoneFeed {
	return models.ZoneFeed{Status: "success", Zones: zones}
}

func newTestController(t *testing.T, src *fakeSource, opts ...ControllerOption) (*Controller, *fakeEventRepo, *countingCollector) {
	t.Helper()
	tmpl, err := templates.Default(nil)
	require.NoError(t, err)
	events := &fakeEventRepo{}
	metrics := newCountingCollector()
	fixed := time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC)
	opts = append([]ControllerOption{WithMetrics(metrics), WithClock(func() time.Time { return fixed })}, opts...)
	return NewController(src, tmpl, events, opts...), events, metrics
}

func eventTypes(events []models.ActivityEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestController_LoadCreatesOnePanelPerZone(t *testing.T) {
	src := &fakeSource{listFn: func(int) (models.ZoneFeed, error) {
		return feedOf(zone("2", "Beds", nil), zone("1", "Lawn", nil)), nil
	}}
	c, events, metrics := newTestController(t, src)

	require.NoError(t, c.Load(context.Background()))

	snap := c.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, models.ZoneID("1"), snap[0].ID)
	require.Equal(t, "Lawn", snap[0].Name)
	require.Equal(t, models.ZoneID("2"), snap[1].ID)

	html := c.RenderHTML()
	require.Contains(t, html, `id="zone_1"`)
	require.Contains(t, html, `id="zone_2"`)

	require.Equal(t, []string{models.EventZoneAdded, models.EventZoneAdded}, eventTypes(events.appended))
	require.Equal(t, 1, metrics.loads[telemetry.ResultOK])
	require.Equal(t, 2, metrics.zones)
}

func TestController_ReloadUpdatesInPlace(t *testing.T) {
	src := &fakeSource{listFn: func(call int) (models.ZoneFeed, error) {
		if call == 1 {
			return feedOf(zone("1", "Lawn", nil)), nil
		}
		return feedOf(zone("1", "Front lawn", func(r *models.ZoneRecord) { r.IsRunning = true })), nil
	}}
	c, events, _ := newTestController(t, src)

	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Load(context.Background()))

	rec, ok := c.Zone("1")
	require.True(t, ok)
	require.Equal(t, "Front lawn", rec.Name)
	require.True(t, rec.IsRunning)

	html := c.RenderHTML()
	require.Equal(t, 1, strings.Count(html, `id="zone_1"`))
	require.Contains(t, html, `class="stop"`)
	require.Len(t, events.appended, 1)
}

func TestController_VanishedZoneIsKept(t *testing.T) {
	src := &fakeSource{listFn: func(call int) (models.ZoneFeed, error) {
		if call == 1 {
			return feedOf(zone("1", "Lawn", nil), zone("2", "Beds", nil)), nil
		}
		return feedOf(zone("1", "Lawn", nil)), nil
	}}
	c, _, _ := newTestController(t, src)

	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Load(context.Background()))

	_, ok := c.Zone("2")
	require.True(t, ok)
	require.Len(t, c.Snapshot(), 2)
}

func TestController_LoadFailureKeepsPanels(t *testing.T) {
	boom := errors.New("connection refused")
	src := &fakeSource{listFn: func(call int) (models.ZoneFeed, error) {
		if call == 1 {
			return feedOf(zone("1", "Lawn", nil)), nil
		}
		return models.ZoneFeed{}, boom
	}}
	c, events, metrics := newTestController(t, src)

	require.NoError(t, c.Load(context.Background()))
	before := c.RenderHTML()

	err := c.Load(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, before, c.RenderHTML())
	require.Equal(t, []string{models.EventZoneAdded, models.EventLoadError}, eventTypes(events.appended))
	require.Equal(t, 1, metrics.loads[telemetry.ResultError])
}

// overlappingLoads starts a slow load, completes a faster one after it, then
// releases the slow one.
func overlappingLoads(t *testing.T, c *Controller, entered, release chan struct{}) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()
	<-entered
	require.NoError(t, c.Load(context.Background()))
	close(release)
	require.NoError(t, <-done)
}

func slowFirstSource(entered, release chan struct{}) *fakeSource {
	return &fakeSource{listFn: func(call int) (models.ZoneFeed, error) {
		if call == 1 {
			close(entered)
			<-release
			return feedOf(zone("1", "old", nil)), nil
		}
		return feedOf(zone("1", "new", nil)), nil
	}}
}

func TestController_StaleFeedDiscarded(t *testing.T) {
	entered, release := make(chan struct{}), make(chan struct{})
	c, _, metrics := newTestController(t, slowFirstSource(entered, release))

	overlappingLoads(t, c, entered, release)

	rec, ok := c.Zone("1")
	require.True(t, ok)
	require.Equal(t, "new", rec.Name)
	require.Equal(t, 1, metrics.loads[telemetry.ResultStale])
}

func TestController_LastCompletedWinsWhenStaleKept(t *testing.T) {
	entered, release := make(chan struct{}), make(chan struct{})
	c, _, metrics := newTestController(t, slowFirstSource(entered, release), WithDiscardStaleFeeds(false))

	overlappingLoads(t, c, entered, release)

	rec, _ := c.Zone("1")
	require.Equal(t, "old", rec.Name)
	require.Equal(t, 2, metrics.loads[telemetry.ResultOK])
}

func TestController_PressStartsZoneAndReloads(t *testing.T) {
	src := &fakeSource{listFn: func(int) (models.ZoneFeed, error) {
		return feedOf(zone("1", "Lawn", nil)), nil
	}}
	c, events, metrics := newTestController(t, src)
	require.NoError(t, c.Load(context.Background()))

	// default run template is 5m, 10m, 15m
	require.NoError(t, c.Press(context.Background(), "1", 1))

	require.Equal(t, []startCall{{id: "1", runLength: 10 * time.Minute}}, src.starts)
	require.Equal(t, 2, src.listCalls())
	require.Equal(t, 1, metrics.commands["start/"+telemetry.ResultOK])

	last := events.appended[len(events.appended)-1]
	require.Equal(t, models.EventStart, last.Type)
	require.Equal(t, models.ZoneID("1"), last.ZoneID)
}

func TestController_PressStopOnRunningZone(t *testing.T) {
	src := &fakeSource{listFn: func(int) (models.ZoneFeed, error) {
		return feedOf(zone("4", "Drip", func(r *models.ZoneRecord) { r.IsRunning = true })), nil
	}}
	c, _, _ := newTestController(t, src)
	require.NoError(t, c.Load(context.Background()))

	require.NoError(t, c.Press(context.Background(), "4", 0))
	require.Equal(t, []models.ZoneID{"4"}, src.stops)

	err := c.Press(context.Background(), "4", 1)
	require.ErrorIs(t, err, panel.ErrNoAction)
}

func TestController_CommandFailureLeavesStateAlone(t *testing.T) {
	boom := errors.New("503 from controller")
	src := &fakeSource{
		listFn:   func(int) (models.ZoneFeed, error) { return feedOf(zone("1", "Lawn", nil)), nil },
		startErr: boom,
	}
	c, events, metrics := newTestController(t, src)
	require.NoError(t, c.Load(context.Background()))
	before, _ := c.Zone("1")

	err := c.Start(context.Background(), "1", 0)
	require.ErrorIs(t, err, boom)

	after, _ := c.Zone("1")
	require.Equal(t, before, after)
	require.Equal(t, 1, src.listCalls())
	require.Equal(t, 1, metrics.commands["start/"+telemetry.ResultError])
	require.Equal(t, models.EventCommandError, events.appended[len(events.appended)-1].Type)
}

func TestController_UnknownZone(t *testing.T) {
	c, _, _ := newTestController(t, &fakeSource{})
	ctx := context.Background()

	require.ErrorIs(t, c.Start(ctx, "9", time.Minute), ErrZoneNotFound)
	require.ErrorIs(t, c.Stop(ctx, "9"), ErrZoneNotFound)
	require.ErrorIs(t, c.Press(ctx, "9", 0), ErrZoneNotFound)

	_, ok := c.Zone("9")
	require.False(t, ok)
}

func TestController_AddZoneUpserts(t *testing.T) {
	c, _, metrics := newTestController(t, &fakeSource{})

	first := c.AddZone(zone("1", "Lawn", nil))
	second := c.AddZone(zone("1", "Lawn east", nil))

	require.Same(t, first, second)
	require.Equal(t, "Lawn east", second.Name())
	require.Equal(t, 1, metrics.zones)
}

func TestController_RenderPage(t *testing.T) {
	c, _, _ := newTestController(t, &fakeSource{}, WithTitle("Backyard"))
	c.ProcessZones(feedOf(zone("1", "Lawn", nil)))

	page, err := c.RenderPage()
	require.NoError(t, err)
	require.Contains(t, page, "<title>Backyard</title>")
	require.Contains(t, page, `id="zones-root"`)
	require.Contains(t, page, `id="zone_1"`)
	require.Contains(t, page, StreamPath)
}
