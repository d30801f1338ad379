package syncer

import (
	"context"
	"log"
	"time"

	"collection-status-backend/config"
	"collection-status-backend/internal/engine"
	"collection-status-backend/internal/notification"
	"collection-status-backend/internal/store"
	"collection-status-backend/internal/upstream"

	"github.com/SherClockHolmes/webpush-go"
)

// Service orchestrates the periodic schedule sync against the upstream store.
type Service struct {
	cfg        *config.Config
	store      store.Store
	client     *upstream.Client
	workerPool *notification.WorkerPool
}

// NewService creates and initializes a new syncer service.
func NewService(cfg *config.Config, s store.Store, client *upstream.Client) *Service {
	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, s.DB(), &webpushOptions)

	return &Service{
		cfg:        cfg,
		store:      s,
		client:     client,
		workerPool: workerPool,
	}
}

// canonicalStatus maps an upstream status spelling to its canonical form.
func (s *Service) canonicalStatus(raw string) engine.ScheduleStatus {
	for _, v := range s.cfg.Sync.StatusPendingValues {
		if raw == v {
			return engine.StatusPending
		}
	}
	for _, v := range s.cfg.Sync.StatusInProgressValues {
		if raw == v {
			return engine.StatusInProgress
		}
	}
	for _, v := range s.cfg.Sync.StatusCompletedValues {
		if raw == v {
			return engine.StatusCompleted
		}
	}
	for _, v := range s.cfg.Sync.StatusDelayedValues {
		if raw == v {
			return engine.StatusDelayed
		}
	}
	return engine.StatusUnknown
}

// Run starts the sync process in a loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Sync.Enabled {
		log.Println("Schedule sync is disabled. Not starting.")
		return
	}
	log.Println("Starting schedule sync service...")

	// Start the worker pool
	s.workerPool.Start(ctx)

	s.SyncOnce(ctx)

	timer := time.NewTimer(s.cfg.Sync.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sync service shutting down.")
			return
		case <-timer.C:
			s.SyncOnce(ctx)
			timer.Reset(s.cfg.Sync.Interval)
		}
	}
}

// SyncOnce performs a single round of fetching, classification, and persistence
// at the current business time.
func (s *Service) SyncOnce(ctx context.Context) {
	s.SyncAt(ctx, s.localNow())
}

// SyncAt runs one sync cycle classifying against the given instant.
func (s *Service) SyncAt(ctx context.Context, now time.Time) {
	log.Println("Executing sync cycle...")

	// Step 1: Fetch all schedules from the upstream store
	var allItems []store.ApiSchedule
	total := 1
	pageSize := s.cfg.Upstream.PageSize
	var fetchErr error
	for page := 1; (page-1)*pageSize < total; page++ {
		resp, err := s.client.FetchSchedulePage(ctx, page)
		if err != nil {
			log.Printf("Error fetching page %d: %v", page, err)
			fetchErr = err
			break
		}
		if resp.Data.Total == 0 || len(resp.Data.Items) == 0 {
			break
		}
		total = resp.Data.Total
		allItems = append(allItems, resp.Data.Items...)
		log.Printf("Fetched page %d, total items so far: %d", page, len(allItems))
	}

	// If the fetch failed and resulted in zero items, abort to avoid clearing state.
	if fetchErr != nil && len(allItems) == 0 {
		log.Println("Sync cycle aborted due to fetch error with no items retrieved. Overdue state will not be updated.")
		return
	}

	for i := range allItems {
		allItems[i].CanonicalStatus = s.canonicalStatus(allItems[i].Status)
	}

	// Step 2: Delegate metadata persistence to the store layer
	if err := s.store.UpsertHotelsAndSchedules(ctx, allItems); err != nil {
		log.Printf("Error processing hotels and schedules: %v", err)
		return // Return early if schedule metadata fails
	}

	// Step 3: Delegate overdue classification updates to the store layer
	newlyOverdue, err := s.store.UpdateOverdue(ctx, now, allItems, s.cfg.Sync.Grace)
	if err != nil {
		log.Printf("Error processing overdue changes: %v", err)
	}

	// Dispatch notification jobs to the worker pool
	if len(newlyOverdue) > 0 {
		log.Printf("Dispatching notifications for %d overdue schedules", len(newlyOverdue))
		for _, scheduleID := range newlyOverdue {
			s.workerPool.Dispatch(scheduleID)
		}
	}

	log.Println("Sync cycle finished.")
}

// localNow returns the current time in the configured business timezone.
// Overdue classification is wall-clock relative, so the zone matters.
func (s *Service) localNow() time.Time {
	return time.Now().In(s.cfg.Sync.Location())
}
