package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/laimis/stock-analysis-sub000/internal/repo"
	"github.com/laimis/stock-analysis-sub000/internal/service/monitoring"
)

const defaultRecentLimit = 50

type Handlers struct {
	registry *monitoring.Registry
	alerts   repo.AlertRepo
}

func NewHandlers(registry *monitoring.Registry, alerts repo.AlertRepo) *Handlers {
	return &Handlers{
		registry: registry,
		alerts:   alerts,
	}
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"monitors": h.registry.Len(),
	})
}

// RunMonitors 请求下一轮立即执行, 多次请求合并
func (h *Handlers) RunMonitors(c *gin.Context) {
	h.registry.RequestManualRun()
	c.JSON(http.StatusAccepted, gin.H{"status": "scheduled"})
}

type monitorView struct {
	Source          string    `json:"source"`
	Ticker          string    `json:"ticker"`
	OwnerId         int64     `json:"owner_id"`
	Status          string    `json:"status"`
	Reference       string    `json:"reference"`
	LastObserved    string    `json:"last_observed"`
	LastTriggeredAt time.Time `json:"last_triggered_at,omitempty"`
}

func (h *Handlers) ListMonitors(c *gin.Context) {
	snapshot := h.registry.Snapshot()
	views := make([]monitorView, 0, len(snapshot))
	for _, m := range snapshot {
		views = append(views, monitorView{
			Source:          string(m.Source),
			Ticker:          m.Ticker,
			OwnerId:         m.OwnerId,
			Status:          string(m.Status),
			Reference:       m.Reference.String(),
			LastObserved:    m.LastObserved.String(),
			LastTriggeredAt: m.LastTriggeredAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"monitors": views})
}

func (h *Handlers) ListNotices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notices": h.registry.Notices()})
}

func (h *Handlers) RecentAlerts(c *gin.Context) {
	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	records, err := h.alerts.FindRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": records})
}
