package service

import (
	"airwatch/models"
	"airwatch/openaq"
	"airwatch/state"
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubFetcher struct {
	measurements []openaq.Measurement
	err          error
}

func (f *stubFetcher) Measurements(ctx context.Context) ([]openaq.Measurement, error) {
	return f.measurements, f.err
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Record{}, &models.RefreshRun{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, fetcher Fetcher, mode string) *RecordService {
	t.Helper()
	return NewRecordService(newTestDB(t), fetcher, &state.AppState{}, 10, mode)
}

func TestRefreshReplacesAllRows(t *testing.T) {
	fetcher := &stubFetcher{measurements: []openaq.Measurement{
		{UTC: "2023-10-18T00:00:00Z", Value: 12.5},
		{UTC: "2023-10-18T01:00:00Z", Value: 4.2},
	}}
	svc := newTestService(t, fetcher, RefreshModeReplace)

	// Seed a stale row that must not survive the refresh.
	if err := svc.db.Create(&models.Record{Datetime: "2020-01-01T00:00:00Z", Value: 99}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	run, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if run.Fetched != 2 || run.Inserted != 2 || !run.UpstreamOK {
		t.Fatalf("unexpected run: %+v", run)
	}

	var records []models.Record
	if err := svc.db.Order("id").Find(&records).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records after refresh, got %d", len(records))
	}
	for _, r := range records {
		if r.Datetime == "2020-01-01T00:00:00Z" {
			t.Fatalf("stale row survived refresh: %v", r)
		}
	}
}

func TestRefreshDropModeRestartsIDs(t *testing.T) {
	fetcher := &stubFetcher{measurements: []openaq.Measurement{
		{UTC: "2023-10-18T00:00:00Z", Value: 12.5},
	}}
	svc := newTestService(t, fetcher, RefreshModeDrop)

	for i := 0; i < 2; i++ {
		if _, err := svc.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh #%d: %v", i+1, err)
		}
	}

	var records []models.Record
	if err := svc.db.Find(&records).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ID != 1 {
		t.Fatalf("expected id to restart at 1 after drop refresh, got %d", records[0].ID)
	}
}

func TestRefreshIdempotentWithStableUpstream(t *testing.T) {
	fetcher := &stubFetcher{measurements: []openaq.Measurement{
		{UTC: "2023-10-18T00:00:00Z", Value: 12.5},
		{UTC: "2023-10-18T01:00:00Z", Value: 9.9},
		{UTC: "2023-10-18T02:00:00Z", Value: 10},
	}}
	svc := newTestService(t, fetcher, RefreshModeReplace)

	snapshot := func() []models.Record {
		var records []models.Record
		if err := svc.db.Order("datetime").Find(&records).Error; err != nil {
			t.Fatalf("find: %v", err)
		}
		return records
	}

	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	first := snapshot()

	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	second := snapshot()

	if len(first) != len(second) {
		t.Fatalf("refresh not idempotent: %d vs %d rows", len(first), len(second))
	}
	for i := range first {
		if first[i].Datetime != second[i].Datetime || first[i].Value != second[i].Value {
			t.Fatalf("refresh not idempotent at row %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestRefreshSwallowsUpstreamFailure(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("upstream down")}
	svc := newTestService(t, fetcher, RefreshModeReplace)

	if err := svc.db.Create(&models.Record{Datetime: "2023-10-18T00:00:00Z", Value: 12.5}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	run, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh must not surface upstream errors, got %v", err)
	}
	if run.UpstreamOK {
		t.Fatalf("expected upstream_ok=false")
	}
	if run.Fetched != 0 || run.Inserted != 0 {
		t.Fatalf("expected empty run, got %+v", run)
	}

	total, err := svc.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected empty table after failed-upstream refresh, got %d rows", total)
	}
}

func TestListThresholdBoundary(t *testing.T) {
	svc := newTestService(t, &stubFetcher{}, RefreshModeReplace)

	seed := []models.Record{
		{Datetime: "2023-10-18T00:00:00Z", Value: 9.9},
		{Datetime: "2023-10-18T01:00:00Z", Value: 10},
		{Datetime: "2023-10-18T02:00:00Z", Value: 12.5},
	}
	if err := svc.db.Create(&seed).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	records, err := svc.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records at threshold 10, got %d", len(records))
	}
	for _, r := range records {
		if r.Value < 10 {
			t.Fatalf("record below threshold leaked into listing: %v", r)
		}
	}
}

func TestRefreshHistoryLatestFirst(t *testing.T) {
	fetcher := &stubFetcher{measurements: []openaq.Measurement{
		{UTC: "2023-10-18T00:00:00Z", Value: 12.5},
	}}
	svc := newTestService(t, fetcher, RefreshModeReplace)

	for i := 0; i < 3; i++ {
		if _, err := svc.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh #%d: %v", i+1, err)
		}
	}

	runs, err := svc.RefreshHistory(2)
	if err != nil {
		t.Fatalf("RefreshHistory: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected history limited to 2 runs, got %d", len(runs))
	}
	if runs[0].ID <= runs[1].ID {
		t.Fatalf("expected latest-first ordering, got ids %d, %d", runs[0].ID, runs[1].ID)
	}
}
