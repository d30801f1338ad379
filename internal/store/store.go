package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"collection-status-backend/internal/engine"
	"collection-status-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB
	UpsertHotelsAndSchedules(ctx context.Context, items []ApiSchedule) error
	UpdateOverdue(ctx context.Context, now time.Time, items []ApiSchedule, grace time.Duration) ([]int64, error)
	CompleteSchedule(ctx context.Context, scheduleID int64, now time.Time) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying gorm handle for handlers that query directly.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// UpsertHotelsAndSchedules handles the database updates for hotel and schedule metadata.
func (s *gormStore) UpsertHotelsAndSchedules(ctx context.Context, items []ApiSchedule) error {
	existingSchedules, err := s.fetchAllSchedules(ctx)
	if err != nil {
		log.Printf("Warning: could not pre-fetch schedules: %v", err)
		existingSchedules = make(map[int64]model.Schedule)
	}

	// Phase 1: upsert hotels referenced by the feed.
	if err := s.upsertHotels(ctx, items); err != nil {
		return fmt.Errorf("failed to process hotels: %w", err)
	}

	// Phase 2: build schedule slice for upserting.
	var schedulesToUpsert []model.Schedule
	for _, item := range items {
		if item.HotelID == 0 {
			log.Printf("Skipping schedule %d: no hotel reference", item.ID)
			continue
		}

		schedule, needsUpsert := prepareSchedule(item, existingSchedules)
		if needsUpsert {
			schedulesToUpsert = append(schedulesToUpsert, schedule)
		}
	}

	if len(schedulesToUpsert) > 0 {
		log.Printf("Batch upserting %d schedules...", len(schedulesToUpsert))
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return batchUpsertSchedules(tx, schedulesToUpsert)
		})
	}
	return nil
}

// UpdateOverdue diffs the classified feed against open overdue records inside a
// transaction and returns the IDs of schedules that just became overdue.
func (s *gormStore) UpdateOverdue(ctx context.Context, now time.Time, items []ApiSchedule, grace time.Duration) ([]int64, error) {
	openRecords, err := s.fetchAllOpenOverdues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open overdue records: %w", err)
	}

	var newlyOverdue []int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			cls := engine.Classify(item.Day, item.Slot, item.CanonicalStatus, now, grace)
			openRecord, isOpen := openRecords[item.ID]

			if cls.Overdue {
				if !isOpen {
					newRecord := model.OverdueOpen{
						ScheduleID:    item.ID,
						FirstSeenAt:   now,
						Day:           item.Day,
						Slot:          item.Slot,
						FromYesterday: cls.FromYesterday,
					}
					if err := tx.Create(&newRecord).Error; err != nil {
						return fmt.Errorf("failed to create overdue record for schedule %d: %w", item.ID, err)
					}
					newlyOverdue = append(newlyOverdue, item.ID)
				}
			} else if isOpen {
				resolution := model.ResolutionRecovered
				if item.CanonicalStatus == engine.StatusCompleted {
					resolution = model.ResolutionCompleted
				}
				if err := archiveRecord(tx, openRecord, now, resolution); err != nil {
					return err
				}
				if err := tx.Delete(&model.OverdueOpen{}, openRecord.ScheduleID).Error; err != nil {
					return fmt.Errorf("failed to delete overdue record for schedule %d: %w", openRecord.ScheduleID, err)
				}
			}

			// Remove the schedule from the map to track which ones we've seen.
			delete(openRecords, item.ID)
		}

		// Handle schedules that had open overdue records but are no longer in the feed.
		for _, remaining := range openRecords {
			if err := archiveRecord(tx, remaining, now, model.ResolutionDisappeared); err != nil {
				return err
			}
			if err := tx.Delete(&model.OverdueOpen{}, remaining.ScheduleID).Error; err != nil {
				return fmt.Errorf("failed to delete overdue record for schedule %d: %w", remaining.ScheduleID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newlyOverdue, nil
}

// CompleteSchedule marks a schedule completed locally and closes any open
// overdue episode. It is called only after the upstream write succeeded.
func (s *gormStore) CompleteSchedule(ctx context.Context, scheduleID int64, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Schedule{}).
			Where("id = ?", scheduleID).
			Update("status", string(engine.StatusCompleted))
		if res.Error != nil {
			return fmt.Errorf("failed to update schedule %d: %w", scheduleID, res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var openRecord model.OverdueOpen
		err := tx.First(&openRecord, scheduleID).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up overdue record for schedule %d: %w", scheduleID, err)
		}

		if err := archiveRecord(tx, openRecord, now, model.ResolutionCompleted); err != nil {
			return err
		}
		return tx.Delete(&model.OverdueOpen{}, scheduleID).Error
	})
}

// archiveRecord creates a historical record of a resolved overdue episode.
func archiveRecord(tx *gorm.DB, recordToArchive model.OverdueOpen, resolvedAt time.Time, resolution string) error {
	historyRecord := model.OverdueHistory{
		ScheduleID:  recordToArchive.ScheduleID,
		ResolvedAt:  resolvedAt,
		FirstSeenAt: recordToArchive.FirstSeenAt,
		Day:         recordToArchive.Day,
		Slot:        recordToArchive.Slot,
		Resolution:  resolution,
	}

	if err := tx.Create(&historyRecord).Error; err != nil {
		return fmt.Errorf("failed to archive overdue record for schedule %d: %w", recordToArchive.ScheduleID, err)
	}
	return nil
}

// --- Helpers ---

func (s *gormStore) fetchAllOpenOverdues(ctx context.Context) (map[int64]model.OverdueOpen, error) {
	var openRecords []model.OverdueOpen
	if err := s.db.WithContext(ctx).Find(&openRecords).Error; err != nil {
		return nil, err
	}
	recordMap := make(map[int64]model.OverdueOpen, len(openRecords))
	for _, r := range openRecords {
		recordMap[r.ScheduleID] = r
	}
	return recordMap, nil
}

func (s *gormStore) fetchAllSchedules(ctx context.Context) (map[int64]model.Schedule, error) {
	var schedules []model.Schedule
	if err := s.db.WithContext(ctx).Find(&schedules).Error; err != nil {
		return nil, err
	}
	scheduleMap := make(map[int64]model.Schedule, len(schedules))
	for _, sc := range schedules {
		scheduleMap[sc.ID] = sc
	}
	return scheduleMap, nil
}

func (s *gormStore) upsertHotels(ctx context.Context, items []ApiSchedule) error {
	hotelsToUpsert := make(map[int64]model.Hotel)
	for _, item := range items {
		if item.HotelID == 0 || item.HotelName == "" {
			continue
		}
		if _, exists := hotelsToUpsert[item.HotelID]; !exists {
			hotelsToUpsert[item.HotelID] = model.Hotel{
				ID:      item.HotelID,
				Name:    item.HotelName,
				Address: item.Address,
			}
		}
	}

	if len(hotelsToUpsert) == 0 {
		return nil
	}

	var hotelList []model.Hotel
	for _, h := range hotelsToUpsert {
		hotelList = append(hotelList, h)
	}

	log.Printf("Batch upserting %d hotels...", len(hotelList))
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "address", "updated_at"}),
	}).Create(&hotelList).Error; err != nil {
		return fmt.Errorf("batch upsert hotels failed: %w", err)
	}
	return nil
}

func prepareSchedule(item ApiSchedule, existingSchedules map[int64]model.Schedule) (model.Schedule, bool) {
	newSchedule := model.Schedule{
		ID:        item.ID,
		HotelID:   item.HotelID,
		Day:       item.Day,
		Slot:      item.Slot,
		Status:    string(item.CanonicalStatus),
		IsVisible: item.IsVisible,
	}

	if oldSchedule, exists := existingSchedules[newSchedule.ID]; exists {
		if oldSchedule.HotelID == newSchedule.HotelID &&
			oldSchedule.Day == newSchedule.Day &&
			oldSchedule.Slot == newSchedule.Slot &&
			oldSchedule.Status == newSchedule.Status &&
			oldSchedule.IsVisible == newSchedule.IsVisible {
			return newSchedule, false
		}
	}
	return newSchedule, true
}

func batchUpsertSchedules(tx *gorm.DB, schedules []model.Schedule) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"hotel_id", "day", "slot", "status", "is_visible", "updated_at"}),
	}).Create(&schedules).Error
}
