package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collection-status-backend/internal/model"
)

func setupSubscriptionRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/api/subscriptions", h.PutSubscription)
	r.GET("/api/subscriptions", h.GetSubscription)
	r.DELETE("/api/subscriptions", h.DeleteSubscription)
	return r
}

func TestPutSubscriptionMissingBody(t *testing.T) {
	h, _ := newTestHandler(t, &fakeUpstream{})
	router := setupSubscriptionRouter(h)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/subscriptions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionLifecycle(t *testing.T) {
	h, db := newTestHandler(t, &fakeUpstream{})
	require.NoError(t, db.Create(&model.Hotel{ID: 7, Name: "Grand Plaza"}).Error)
	router := setupSubscriptionRouter(h)

	// Create
	body := `{"endpoint":"https://example.com/push","p256dh":"key","auth":"secret","subscribed_hotels":[7]}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/subscriptions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	// Read back
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/subscriptions?endpoint=https://example.com/push", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subscribed_hotels":[7]}`, w.Body.String())

	// Replace the hotel mapping with an empty one
	body = `{"endpoint":"https://example.com/push","p256dh":"key","auth":"secret"}`
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PUT", "/api/subscriptions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/subscriptions?endpoint=https://example.com/push", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subscribed_hotels":[]}`, w.Body.String())

	// Delete
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/subscriptions", bytes.NewBufferString(`{"endpoint":"https://example.com/push"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/subscriptions?endpoint=https://example.com/push", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSubscriptionRequiresEndpoint(t *testing.T) {
	h, _ := newTestHandler(t, &fakeUpstream{})
	router := setupSubscriptionRouter(h)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/subscriptions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
