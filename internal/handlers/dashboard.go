package handlers

import (
	"net/http"

	"cedra_storefront/internal/models"
	"cedra_storefront/internal/orders"

	"github.com/gin-gonic/gin"
)

// feedFor retourne le flux du périmètre, démarré au premier appel.
// Un flux inactif s'arrête et sort de la table ; le prochain appel le relance.
func (h *Handler) feedFor(filter models.OrderFilter) *orders.Feed {
	h.feedsMu.Lock()
	defer h.feedsMu.Unlock()

	if feed, ok := h.feeds[filter]; ok {
		return feed
	}
	feed := orders.NewFeed(h.deps.Orders, filter, h.deps.PollInterval, orders.WithIdleStop(orders.DefaultIdleIntervals))
	h.feeds[filter] = feed
	go func() {
		feed.Run(h.ctx)
		h.dropFeed(filter, feed)
	}()
	return feed
}

func (h *Handler) dropFeed(filter models.OrderFilter, feed *orders.Feed) {
	h.feedsMu.Lock()
	defer h.feedsMu.Unlock()
	if h.feeds[filter] == feed {
		delete(h.feeds, filter)
	}
}

// GET /api/admin/dashboard et /api/vendor/dashboard
// Le snapshot a au plus un intervalle de retard ; ?refresh=1 force une lecture.
func (h *Handler) Dashboard(c *gin.Context) {
	viewer := viewerOf(c)
	feed := h.feedFor(orders.FilterFor(viewer))

	snapshot := feed.Snapshot()
	if snapshot.Seq == 0 || c.Query("refresh") == "1" {
		feed.Poll(c.Request.Context())
		snapshot = feed.Snapshot()
	}

	visible := orders.VisibleTo(viewer, snapshot.Orders)
	c.JSON(http.StatusOK, orders.Snapshot{
		Seq:       snapshot.Seq,
		FetchedAt: snapshot.FetchedAt,
		Orders:    visible,
		Stats:     orders.Summarize(visible),
	})
}
