package api

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"collection-status-backend/internal/mw"
	"collection-status-backend/internal/thread"
)

// GetMessageThreads handles GET /api/messages/threads. It fetches the
// authenticated user's flat message list from the upstream dispatcher and
// regroups it into per-partner threads, newest conversation first.
func (h *Handler) GetMessageThreads(c *gin.Context) {
	session, ok := mw.SessionFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	messages, err := h.upstream.FetchMessages(c.Request.Context(), session.UserID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	grouped := thread.GroupByPartner(messages, session.UserID)

	threads := make([]thread.Thread, 0, len(grouped))
	for _, t := range grouped {
		threads = append(threads, t)
	}
	sort.Slice(threads, func(i, j int) bool {
		return threads[i].LastMessage().SentAt > threads[j].LastMessage().SentAt
	})

	c.JSON(http.StatusOK, threads)
}
