package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mahammedjunedattar/cloth-invent/internal/models"
)

const statsKeyPrefix = "stats:"

// statsGenerations counts invalidations per store. A computed result is only
// cached if no write for the store happened while it was being computed.
type statsGenerations struct {
	mu  sync.Mutex
	gen map[string]uint64
}

func (g *statsGenerations) current(storeID string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen[storeID]
}

// bump runs invalidate under the lock so no stale store can slip between the
// increment and the cache delete.
func (g *statsGenerations) bump(storeID string, invalidate func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen == nil {
		g.gen = make(map[string]uint64)
	}
	g.gen[storeID]++
	invalidate()
}

// storeIf runs store only if storeID is still at generation want.
func (g *statsGenerations) storeIf(storeID string, want uint64, store func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen[storeID] == want {
		store()
	}
}

// GET /api/inventory/stats
func (h *ItemHandler) GetStats(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	key := statsKeyPrefix + s.StoreID
	if h.Cache != nil {
		if v, found := h.Cache.GetValue(key); found {
			c.JSON(http.StatusOK, v)
			return
		}
	}

	gen := h.statsGen.current(s.StoreID)
	stats, err := h.Items.Stats(c.Request.Context(), s.StoreID)
	if err != nil {
		internalError(c, "Failed to load inventory stats", err)
		return
	}
	if stats == nil {
		stats = &models.InventoryStats{}
	}

	if h.Cache != nil {
		h.statsGen.storeIf(s.StoreID, gen, func() {
			if h.StatsTTL > 0 {
				h.Cache.Set(key, stats, h.StatsTTL)
			} else {
				h.Cache.Set(key, stats)
			}
		})
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ItemHandler) invalidateStats(storeID string) {
	h.statsGen.bump(storeID, func() {
		if h.Cache != nil {
			h.Cache.Delete(statsKeyPrefix + storeID)
		}
	})
}
