package api

import (
	"context"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"collection-status-backend/internal/store"
	"collection-status-backend/internal/thread"
)

// Upstream is the slice of the upstream client the handlers need. The real
// implementation is *upstream.Client; tests substitute a fake.
type Upstream interface {
	MarkComplete(ctx context.Context, scheduleID int64) error
	SendApology(ctx context.Context, hotelID int64, target string) error
	FetchMessages(ctx context.Context, userID int64) ([]thread.Message, error)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	upstream Upstream
	webpush  *webpush.Options
	grace    time.Duration
	now      func() time.Time
}

// NewHandler creates a new API handler. Request-time classification and the
// apology window are evaluated in loc, the business timezone the sync loop
// classifies in; the two must agree on what "today" means.
func NewHandler(s store.Store, up Upstream, webpushOptions *webpush.Options, grace time.Duration, loc *time.Location) *Handler {
	return &Handler{
		store:    s,
		upstream: up,
		webpush:  webpushOptions,
		grace:    grace,
		now:      func() time.Time { return time.Now().In(loc) },
	}
}
