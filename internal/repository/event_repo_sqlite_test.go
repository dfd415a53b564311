package repository_test

import (
	"context"
	"testing"
	"time"

	"garden_panel/internal/models"
	"garden_panel/internal/repository"
	"garden_panel/internal/repository/db"

	"github.com/google/uuid"
)

// openRepo backs the repository with a private in-memory database.
func openRepo(t *testing.T, capacity int) *repository.EventSQLite {
	t.Helper()
	conn, err := db.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return repository.NewEventSQLite(conn, capacity)
}

func TestEventSQLite_AppendFillsIDAndTime(t *testing.T) {
	repo := openRepo(t, 4)
	ctx := context.Background()

	if err := repo.Append(ctx, models.ActivityEvent{Type: " start ", ZoneID: "z1"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := repo.List(ctx, time.Time{}, time.Time{}, "", "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].EventID == "" {
		t.Errorf("EventID must be generated")
	}
	if got[0].OccurredAt.IsZero() || got[0].OccurredAt.Location() != time.UTC {
		t.Errorf("OccurredAt must be set in UTC, got %v", got[0].OccurredAt)
	}
	if got[0].Type != models.EventStart {
		t.Errorf("Type: want %q, got %q", models.EventStart, got[0].Type)
	}
}

func TestEventSQLite_EvictsOldest(t *testing.T) {
	repo := openRepo(t, 3)
	ctx := context.Background()
	base := time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_ = repo.Append(ctx, models.ActivityEvent{
			EventID:    string(rune('a' + i)),
			OccurredAt: base.Add(time.Duration(i) * time.Second),
			Type:       models.EventStart,
		})
	}

	got, _ := repo.List(ctx, time.Time{}, time.Time{}, "", "")
	if len(got) != 3 {
		t.Fatalf("expected 3 events after eviction, got %d", len(got))
	}
	want := []string{"c", "d", "e"}
	for i, ev := range got {
		if ev.EventID != want[i] {
			t.Errorf("event %d: want %q, got %q", i, want[i], ev.EventID)
		}
	}
}

func TestEventSQLite_ListFilters(t *testing.T) {
	repo := openRepo(t, 10)
	ctx := context.Background()
	base := time.Date(2026, 10, 14, 6, 0, 0, 0, time.FixedZone("X", 2*3600))

	events := []models.ActivityEvent{
		{EventID: "1", OccurredAt: base, Type: models.EventStart, ZoneID: "z1"},
		{EventID: "2", OccurredAt: base.Add(time.Minute), Type: models.EventStop, ZoneID: "z1"},
		{EventID: "3", OccurredAt: base.Add(2 * time.Minute), Type: models.EventStart, ZoneID: "z2"},
		{EventID: "4", OccurredAt: base.Add(3 * time.Minute), Type: models.EventLoadError},
	}
	for _, e := range events {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	cases := []struct {
		name   string
		from   time.Time
		to     time.Time
		typ    string
		zone   models.ZoneID
		wantID []string
	}{
		{"all", time.Time{}, time.Time{}, "", "", []string{"1", "2", "3", "4"}},
		{"type_lowercase", time.Time{}, time.Time{}, "start", "", []string{"1", "3"}},
		{"zone", time.Time{}, time.Time{}, "", "z1", []string{"1", "2"}},
		{"range_inclusive", base.Add(time.Minute), base.Add(2 * time.Minute), "", "", []string{"2", "3"}},
		{"from_only", base.Add(3 * time.Minute), time.Time{}, "", "", []string{"4"}},
		{"no_match", time.Time{}, time.Time{}, "STOP", "z2", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.List(ctx, tc.from, tc.to, tc.typ, tc.zone)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != len(tc.wantID) {
				t.Fatalf("want %d events, got %d", len(tc.wantID), len(got))
			}
			for i, ev := range got {
				if ev.EventID != tc.wantID[i] {
					t.Errorf("event %d: want %q, got %q", i, tc.wantID[i], ev.EventID)
				}
			}
		})
	}
}

func TestEventSQLite_CanceledContext(t *testing.T) {
	repo := openRepo(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.Append(ctx, models.ActivityEvent{Type: models.EventStop}); err == nil {
		t.Fatalf("expected error for canceled context")
	}
	if _, err := repo.List(ctx, time.Time{}, time.Time{}, "", ""); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}

func TestNewRepository(t *testing.T) {
	conn, err := db.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer conn.Close()
	repos := repository.NewRepository(conn, 0)
	if repos.EventRepo == nil {
		t.Fatalf("EventRepo must be wired")
	}
}
