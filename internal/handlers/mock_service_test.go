package handlers

import (
	"context"
	"time"

	"garden_panel/internal/models"
	"garden_panel/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type startCall struct {
	id        models.ZoneID
	runLength time.Duration
}

type mockZones struct {
	zones   []models.ZoneRecord
	html    string
	page    string
	pageErr error

	loadErr  error
	startErr error
	stopErr  error
	pressErr error

	loads   int
	starts  []startCall
	stops   []models.ZoneID
	presses []int
}

func (m *mockZones) Load(ctx context.Context) error {
	m.loads++
	return m.loadErr
}

func (m *mockZones) Snapshot() []models.ZoneRecord { return m.zones }

func (m *mockZones) Zone(id models.ZoneID) (models.ZoneRecord, bool) {
	for _, z := range m.zones {
		if z.ID == id {
			return z, true
		}
	}
	return models.ZoneRecord{}, false
}

func (m *mockZones) Start(ctx context.Context, id models.ZoneID, runLength time.Duration) error {
	m.starts = append(m.starts, startCall{id: id, runLength: runLength})
	return m.startErr
}

func (m *mockZones) Stop(ctx context.Context, id models.ZoneID) error {
	m.stops = append(m.stops, id)
	return m.stopErr
}

func (m *mockZones) Press(ctx context.Context, id models.ZoneID, index int) error {
	m.presses = append(m.presses, index)
	return m.pressErr
}

func (m *mockZones) RenderHTML() string { return m.html }

func (m *mockZones) Frame() service.ZoneFrame {
	return service.ZoneFrame{HTML: m.html, Zones: m.zones}
}

func (m *mockZones) RenderPage() (string, error) { return m.page, m.pageErr }

type mockEventLog struct {
	resp     []models.ActivityEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
	lastZone models.ZoneID
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.ActivityEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastZone = f.ZoneID
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func lawnZones() []models.ZoneRecord {
	lawn := models.NewZoneRecord("1")
	lawn.Name = "Lawn"
	beds := models.NewZoneRecord("2")
	beds.Name = "Beds"
	beds.IsRunning = true
	return []models.ZoneRecord{lawn, beds}
}
