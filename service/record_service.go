package service

import (
	"airwatch/errorlog"
	"airwatch/models"
	"airwatch/openaq"
	"airwatch/state"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Fetcher is the upstream measurements source.
type Fetcher interface {
	Measurements(ctx context.Context) ([]openaq.Measurement, error)
}

// RefreshModeReplace wipes and repopulates the records table in one
// transaction; RefreshModeDrop drops and recreates the table first, which is
// the original dashboard behavior but leaves a window with no table at all.
const (
	RefreshModeReplace = "replace"
	RefreshModeDrop    = "drop"
)

// NormalizeRefreshMode maps a configured mode onto a supported one.
func NormalizeRefreshMode(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case RefreshModeDrop:
		return RefreshModeDrop
	default:
		return RefreshModeReplace
	}
}

// RecordService handles record listing and the refresh workflow.
type RecordService struct {
	db        *gorm.DB
	fetcher   Fetcher
	appState  *state.AppState
	threshold float64
	mode      string

	// Serializes concurrent refreshes; two racing drop/recreate cycles would
	// corrupt the result set.
	refreshMu sync.Mutex
}

// NewRecordService constructs a record service
func NewRecordService(db *gorm.DB, fetcher Fetcher, appState *state.AppState, threshold float64, refreshMode string) *RecordService {
	return &RecordService{
		db:        db,
		fetcher:   fetcher,
		appState:  appState,
		threshold: threshold,
		mode:      NormalizeRefreshMode(refreshMode),
	}
}

// Threshold returns the configured risky-value threshold.
func (s *RecordService) Threshold() float64 {
	return s.threshold
}

// List returns all records with value >= threshold, ordered by id.
func (s *RecordService) List(threshold float64) ([]models.Record, error) {
	records := make([]models.Record, 0)
	if err := s.db.Where("value >= ?", threshold).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

// ListPage returns records with value >= threshold, paginated.
func (s *RecordService) ListPage(page, pageSize int, threshold float64) ([]models.Record, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var total int64
	if err := s.db.Model(&models.Record{}).Where("value >= ?", threshold).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count records: %w", err)
	}

	records := make([]models.Record, 0)
	offset := (page - 1) * pageSize
	if err := s.db.Where("value >= ?", threshold).Order("id").Offset(offset).Limit(pageSize).Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list records: %w", err)
	}
	return records, total, nil
}

// Count returns the total number of records.
func (s *RecordService) Count() (int64, error) {
	var total int64
	if err := s.db.Model(&models.Record{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return total, nil
}

// Clear removes every record.
func (s *RecordService) Clear() error {
	if err := s.db.Where("1 = 1").Delete(&models.Record{}).Error; err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	return nil
}

// Refresh replaces the whole record set with the fetcher's current result set
// and persists a RefreshRun describing the outcome. An upstream failure is
// swallowed into "no data": the table ends up empty and the run is marked
// upstream_ok=false, matching the original dashboard's silent-failure policy.
func (s *RecordService) Refresh(ctx context.Context) (*models.RefreshRun, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.appState.BeginRefresh()
	started := time.Now()

	upstreamOK := true
	measurements, err := s.fetcher.Measurements(ctx)
	if err != nil {
		log.Printf("refresh: measurements fetch failed, treating as no data: %v", err)
		errorlog.Error("fetcher", "measurements fetch failed", err.Error())
		measurements = nil
		upstreamOK = false
	}

	records := make([]models.Record, 0, len(measurements))
	for _, m := range measurements {
		records = append(records, models.Record{Datetime: m.UTC, Value: m.Value})
	}

	var storeErr error
	switch s.mode {
	case RefreshModeDrop:
		storeErr = s.refreshDrop(records)
	default:
		storeErr = s.refreshReplace(records)
	}
	if storeErr != nil {
		s.appState.FinishRefresh(len(measurements), 0, upstreamOK)
		errorlog.Error("store", "refresh failed", storeErr.Error())
		return nil, storeErr
	}

	finished := time.Now()
	run := models.RefreshRun{
		StartedAt:  started,
		FinishedAt: finished,
		Mode:       s.mode,
		Fetched:    len(measurements),
		Inserted:   len(records),
		UpstreamOK: upstreamOK,
		DurationMS: finished.Sub(started).Milliseconds(),
	}
	if err := s.db.Create(&run).Error; err != nil {
		// History is best-effort; the record set itself is already consistent.
		log.Printf("refresh: failed to persist refresh run: %v", err)
	}

	s.appState.FinishRefresh(run.Fetched, run.Inserted, upstreamOK)
	log.Printf("refresh: mode=%s fetched=%d inserted=%d upstream_ok=%v duration=%dms",
		run.Mode, run.Fetched, run.Inserted, run.UpstreamOK, run.DurationMS)
	return &run, nil
}

// refreshReplace wipes and repopulates the table inside one transaction, so a
// mid-insert failure rolls back instead of leaving a partial table.
func (s *RecordService) refreshReplace(records []models.Record) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Record{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(&records, 200).Error
	})
	if err != nil {
		return fmt.Errorf("failed to replace records: %w", err)
	}
	return nil
}

// refreshDrop drops and recreates the table before inserting, preserving the
// original drop_all/create_all behavior (ids restart from 1).
func (s *RecordService) refreshDrop(records []models.Record) error {
	migrator := s.db.Migrator()
	if migrator.HasTable(&models.Record{}) {
		if err := migrator.DropTable(&models.Record{}); err != nil {
			return fmt.Errorf("failed to drop records table: %w", err)
		}
	}
	if err := s.db.AutoMigrate(&models.Record{}); err != nil {
		return fmt.Errorf("failed to recreate records table: %w", err)
	}
	if len(records) == 0 {
		return nil
	}
	if err := s.db.CreateInBatches(&records, 200).Error; err != nil {
		return fmt.Errorf("failed to insert records: %w", err)
	}
	return nil
}

// RefreshHistory returns the most recent refresh runs, latest first.
func (s *RecordService) RefreshHistory(limit int) ([]models.RefreshRun, error) {
	if limit <= 0 {
		limit = 20
	}
	runs := make([]models.RefreshRun, 0)
	if err := s.db.Order("id desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list refresh runs: %w", err)
	}
	return runs, nil
}
