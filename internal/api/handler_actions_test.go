package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"collection-status-backend/internal/engine"
	"collection-status-backend/internal/model"
	"collection-status-backend/internal/store"
	"collection-status-backend/internal/thread"
)

// fakeUpstream is a test double for the upstream collaborators.
type fakeUpstream struct {
	markCompleteErr error
	apologyErrs     map[string]error
	messages        []thread.Message
	fetchMessageErr error

	completed  []int64
	dispatched []string
}

func (f *fakeUpstream) MarkComplete(ctx context.Context, scheduleID int64) error {
	if f.markCompleteErr != nil {
		return f.markCompleteErr
	}
	f.completed = append(f.completed, scheduleID)
	return nil
}

func (f *fakeUpstream) SendApology(ctx context.Context, hotelID int64, target string) error {
	f.dispatched = append(f.dispatched, fmt.Sprintf("%d:%s", hotelID, target))
	return f.apologyErrs[target]
}

func (f *fakeUpstream) FetchMessages(ctx context.Context, userID int64) ([]thread.Message, error) {
	if f.fetchMessageErr != nil {
		return nil, f.fetchMessageErr
	}
	return f.messages, nil
}

func newTestHandler(t *testing.T, fake *fakeUpstream) (*Handler, *gorm.DB) {
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	err = db.AutoMigrate(
		&model.Hotel{},
		&model.Schedule{},
		&model.OverdueOpen{},
		&model.OverdueHistory{},
		&model.PushSubscription{},
		&model.ApologyDispatch{},
	)
	require.NoError(t, err)

	return NewHandler(store.NewGormStore(db), fake, nil, engine.DefaultGrace, time.UTC), db
}

// fixedMonday pins the handler clock to a Monday at the given wall-clock time.
func fixedMonday(t *testing.T, h *Handler, hour, min int) {
	now := time.Date(2025, 6, 2, hour, min, 0, 0, time.UTC)
	require.Equal(t, time.Monday, now.Weekday())
	h.now = func() time.Time { return now }
}

func seedSchedule(t *testing.T, db *gorm.DB, id int64, status string) {
	require.NoError(t, db.Create(&model.Hotel{ID: 7, Name: "Grand Plaza"}).Error)
	require.NoError(t, db.Create(&model.Schedule{
		ID: id, HotelID: 7, Day: "Monday", Slot: "06:00 – 12:00", Status: status, IsVisible: true,
	}).Error)
}

func setupActionRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/schedules/:schedule_id/complete", h.CompleteSchedule)
	r.POST("/api/hotels/:hotel_id/apology", h.SendApology)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCompleteSchedule(t *testing.T) {
	fake := &fakeUpstream{}
	h, db := newTestHandler(t, fake)
	fixedMonday(t, h, 14, 0)
	seedSchedule(t, db, 41, string(engine.StatusPending))
	require.NoError(t, db.Create(&model.OverdueOpen{
		ScheduleID: 41, FirstSeenAt: time.Now(), Day: "Monday", Slot: "06:00 – 12:00",
	}).Error)

	w := postJSON(setupActionRouter(h), "/api/schedules/41/complete", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{41}, fake.completed)

	var schedule model.Schedule
	require.NoError(t, db.First(&schedule, 41).Error)
	assert.Equal(t, string(engine.StatusCompleted), schedule.Status)

	var openCount int64
	db.Model(&model.OverdueOpen{}).Count(&openCount)
	assert.Equal(t, int64(0), openCount)
}

func TestCompleteScheduleUpstreamFailure(t *testing.T) {
	fake := &fakeUpstream{markCompleteErr: errors.New("schedule not found")}
	h, db := newTestHandler(t, fake)
	fixedMonday(t, h, 14, 0)
	seedSchedule(t, db, 41, string(engine.StatusPending))

	w := postJSON(setupActionRouter(h), "/api/schedules/41/complete", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	// A failed upstream write must leave the schedule untouched and pending.
	var schedule model.Schedule
	require.NoError(t, db.First(&schedule, 41).Error)
	assert.Equal(t, string(engine.StatusPending), schedule.Status)
}

func TestCompleteScheduleInvalidID(t *testing.T) {
	h, _ := newTestHandler(t, &fakeUpstream{})
	w := postJSON(setupActionRouter(h), "/api/schedules/abc/complete", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendApologyBothTargets(t *testing.T) {
	fake := &fakeUpstream{}
	h, db := newTestHandler(t, fake)
	fixedMonday(t, h, 19, 0)

	w := postJSON(setupActionRouter(h), "/api/hotels/7/apology", `{"today":true,"tomorrow":true}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"7:today", "7:tomorrow"}, fake.dispatched)

	var dispatchCount int64
	db.Model(&model.ApologyDispatch{}).Where("succeeded = ?", true).Count(&dispatchCount)
	assert.Equal(t, int64(2), dispatchCount)
}

func TestSendApologyPartialFailure(t *testing.T) {
	fake := &fakeUpstream{apologyErrs: map[string]error{
		model.ApologyTargetTomorrow: errors.New("dispatcher unavailable"),
	}}
	h, db := newTestHandler(t, fake)
	fixedMonday(t, h, 20, 59)

	w := postJSON(setupActionRouter(h), "/api/hotels/7/apology", `{"today":true,"tomorrow":true}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	// Both targets were attempted independently; only one failed.
	assert.Len(t, fake.dispatched, 2)
	assert.Contains(t, w.Body.String(), `"target":"today"`)
	assert.Contains(t, w.Body.String(), `"dispatcher unavailable"`)

	var succeeded, failed int64
	db.Model(&model.ApologyDispatch{}).Where("succeeded = ?", true).Count(&succeeded)
	db.Model(&model.ApologyDispatch{}).Where("succeeded = ?", false).Count(&failed)
	assert.Equal(t, int64(1), succeeded)
	assert.Equal(t, int64(1), failed)
}

func TestSendApologyWindowClosed(t *testing.T) {
	fake := &fakeUpstream{}
	h, _ := newTestHandler(t, fake)
	fixedMonday(t, h, 17, 59)

	w := postJSON(setupActionRouter(h), "/api/hotels/7/apology", `{"today":true}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, fake.dispatched)
}

func TestHandlerClockFollowsBusinessZone(t *testing.T) {
	h, _ := newTestHandler(t, &fakeUpstream{})

	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	shifted := NewHandler(h.store, h.upstream, nil, engine.DefaultGrace, loc)

	// The default clock must tick in the configured zone, not the server's,
	// so per-request classification and the apology window line up with the
	// sync loop's view of the day.
	now := shifted.now()
	assert.Equal(t, "Asia/Shanghai", now.Location().String())
	assert.WithinDuration(t, time.Now(), now, 5*time.Second)
}

func TestSendApologyNoTarget(t *testing.T) {
	h, _ := newTestHandler(t, &fakeUpstream{})
	fixedMonday(t, h, 19, 0)

	w := postJSON(setupActionRouter(h), "/api/hotels/7/apology", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
