package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/laimis/stock-analysis-sub000/internal/entity"
	"github.com/laimis/stock-analysis-sub000/internal/service/monitoring"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAlertRepo struct {
	mock.Mock
}

func (m *MockAlertRepo) Create(ctx context.Context, record entity.AlertRecord) (int64, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAlertRepo) FindByUserSince(ctx context.Context, userId int64, since time.Time) ([]entity.AlertRecord, error) {
	args := m.Called(ctx, userId, since)
	return args.Get(0).([]entity.AlertRecord), args.Error(1)
}

func (m *MockAlertRepo) FindRecent(ctx context.Context, limit int) ([]entity.AlertRecord, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]entity.AlertRecord), args.Error(1)
}

func newTestRouter(registry *monitoring.Registry, alerts *MockAlertRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandlers(registry, alerts)
	router.GET("/health", h.Health)
	router.POST("/api/v1/monitoring/run", h.RunMonitors)
	router.GET("/api/v1/monitoring/monitors", h.ListMonitors)
	router.GET("/api/v1/monitoring/notices", h.ListNotices)
	router.GET("/api/v1/alerts/recent", h.RecentAlerts)
	return router
}

func TestRunMonitorsSchedulesManualRun(t *testing.T) {
	registry := monitoring.NewRegistry()
	router := newTestRouter(registry, new(MockAlertRepo))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/monitoring/run", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, registry.ConsumeManualRun())
}

func TestListMonitors(t *testing.T) {
	registry := monitoring.NewRegistry()
	registry.Register(monitoring.Monitor{
		Source:    monitoring.SourceStopLoss,
		Ticker:    "AAPL",
		OwnerId:   1,
		Condition: monitoring.Condition{Source: monitoring.SourceStopLoss},
		Reference: decimal.NewFromInt(150),
	})
	router := newTestRouter(registry, new(MockAlertRepo))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/monitoring/monitors", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Monitors []monitorView `json:"monitors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Monitors, 1)
	assert.Equal(t, "AAPL", resp.Monitors[0].Ticker)
	assert.Equal(t, "idle", resp.Monitors[0].Status)
	assert.Equal(t, "150", resp.Monitors[0].Reference)
}

func TestRecentAlertsBadLimit(t *testing.T) {
	router := newTestRouter(monitoring.NewRegistry(), new(MockAlertRepo))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts/recent?limit=abc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecentAlerts(t *testing.T) {
	alerts := new(MockAlertRepo)
	alerts.On("FindRecent", mock.Anything, 10).
		Return([]entity.AlertRecord{{Ticker: "AAPL", Source: "stop-loss"}}, nil).Once()
	router := newTestRouter(monitoring.NewRegistry(), alerts)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts/recent?limit=10", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	alerts.AssertExpectations(t)
}
