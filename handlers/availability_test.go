package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fieldops/models"
	"fieldops/services/availability"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAggregator struct {
	result *models.AvailabilityResult
}

func (s *stubAggregator) AggregateForSlot(ctx context.Context, companyID, serviceID string, slot availability.TimeSlot) *models.AvailabilityResult {
	return s.result
}

func (s *stubAggregator) Aggregate(ctx context.Context, companyID, serviceID string) (*models.CompanyAvailabilitySnapshot, error) {
	return &models.CompanyAvailabilitySnapshot{}, nil
}

type stubBatch struct {
	result *models.BatchResult
	err    error
}

func (s *stubBatch) BatchCheck(ctx context.Context, serviceID, date, timeLabel string) (*models.BatchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubSnapshots struct {
	snapshot *models.CompanyAvailabilitySnapshot
	err      error
}

func (s *stubSnapshots) Upsert(snapshot *models.CompanyAvailabilitySnapshot) error { return nil }

func (s *stubSnapshots) GetByKey(key string) (*models.CompanyAvailabilitySnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

func setupRouter(h *AvailabilityHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/availability")
	api.POST("/check", h.CheckAvailability)
	api.POST("/companies", h.GetAvailableCompanies)
	api.POST("/realtime", h.RealtimeAvailability)
	api.GET("/snapshot/:companyId", h.GetSnapshot)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCheckAvailabilityRequiresAllFields(t *testing.T) {
	h := NewAvailabilityHandler(&stubAggregator{}, &stubBatch{}, &stubSnapshots{}, nil, zap.NewNop())
	r := setupRouter(h)

	rec := postJSON(t, r, "/api/availability/check", gin.H{
		"companyId": "c1",
		"serviceId": "plumbing",
		"date":      "2026-02-04",
		// time missing
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckAvailabilityRejectsMalformedSlotBeforeEngine(t *testing.T) {
	h := NewAvailabilityHandler(&stubAggregator{}, &stubBatch{}, &stubSnapshots{}, nil, zap.NewNop())
	r := setupRouter(h)

	rec := postJSON(t, r, "/api/availability/check", gin.H{
		"companyId": "c1",
		"serviceId": "plumbing",
		"date":      "2026-02-04",
		"time":      "morning-ish",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckAvailabilityReturnsEngineVerdict(t *testing.T) {
	agg := &stubAggregator{result: &models.AvailabilityResult{
		CompanyID: "c1", ServiceID: "plumbing",
		Available: true, Reason: models.ReasonFree,
		AvailableWorkers: []models.WorkerAvailability{{WorkerID: "w1", Available: true}},
		TotalWorkers:     3,
	}}
	h := NewAvailabilityHandler(agg, &stubBatch{}, &stubSnapshots{}, nil, zap.NewNop())
	r := setupRouter(h)

	rec := postJSON(t, r, "/api/availability/check", gin.H{
		"companyId": "c1",
		"serviceId": "plumbing",
		"date":      "2026-02-04",
		"time":      "10:00 AM - 12:00 PM",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success          bool   `json:"success"`
		Available        bool   `json:"available"`
		AvailableWorkers int    `json:"availableWorkers"`
		TotalWorkers     int    `json:"totalWorkers"`
		Message          string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Available)
	assert.Equal(t, 1, resp.AvailableWorkers)
	assert.Equal(t, 3, resp.TotalWorkers)
	assert.Equal(t, "1 of 3 workers available", resp.Message)
}

func TestRealtimeAvailabilitySuggestionsOnlyWhenNothingAvailable(t *testing.T) {
	batch := &stubBatch{result: &models.BatchResult{
		ServiceID:      "plumbing",
		TotalCompanies: 2,
		Companies: []models.CompanyAvailability{
			{CompanyID: "A", Available: false},
			{CompanyID: "B", Available: false},
		},
	}}
	h := NewAvailabilityHandler(&stubAggregator{}, batch, &stubSnapshots{}, nil, zap.NewNop())
	r := setupRouter(h)

	rec := postJSON(t, r, "/api/availability/realtime", gin.H{
		"serviceId": "plumbing",
		"date":      "2026-02-04",
		"time":      "10:00 AM - 12:00 PM",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, false, resp["available"])
	assert.Equal(t, false, resp["canBook"])
	assert.NotEmpty(t, resp["suggestions"])

	// With availability, no suggestions.
	batch.result.AvailableCompanies = 1
	batch.result.Companies[0].Available = true
	rec = postJSON(t, r, "/api/availability/realtime", gin.H{
		"serviceId": "plumbing",
		"date":      "2026-02-04",
		"time":      "10:00 AM - 12:00 PM",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = map[string]any{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["available"])
	_, hasSuggestions := resp["suggestions"]
	assert.False(t, hasSuggestions)
}

func TestGetAvailableCompaniesReturnsFullAndFilteredViews(t *testing.T) {
	batch := &stubBatch{result: &models.BatchResult{
		ServiceID:          "plumbing",
		TotalCompanies:     2,
		AvailableCompanies: 1,
		Companies: []models.CompanyAvailability{
			{CompanyID: "A", CompanyName: "Acme", Available: true, AvailableWorkers: 1, TotalWorkers: 2},
			{CompanyID: "B", CompanyName: "Busy Co", Available: false, TotalWorkers: 1},
		},
		AvailableOnly: []models.CompanyAvailability{
			{CompanyID: "A", CompanyName: "Acme", Available: true, AvailableWorkers: 1, TotalWorkers: 2},
		},
	}}
	h := NewAvailabilityHandler(&stubAggregator{}, batch, &stubSnapshots{}, nil, zap.NewNop())
	r := setupRouter(h)

	rec := postJSON(t, r, "/api/availability/companies", gin.H{
		"serviceId": "plumbing",
		"date":      "2026-02-04",
		"time":      "10:00 AM - 12:00 PM",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TotalCompanies     int                          `json:"totalCompanies"`
		AvailableCompanies int                          `json:"availableCompanies"`
		Companies          []models.CompanyAvailability `json:"companies"`
		AvailableOnly      []models.CompanyAvailability `json:"availableOnly"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.TotalCompanies)
	assert.Equal(t, 1, resp.AvailableCompanies)
	assert.Len(t, resp.Companies, 2)
	assert.Len(t, resp.AvailableOnly, 1)
}

func TestGetAvailableCompaniesRejectsBadSlot(t *testing.T) {
	batch := &stubBatch{err: availability.ErrInvalidSlotFormat}
	h := NewAvailabilityHandler(&stubAggregator{}, batch, &stubSnapshots{}, nil, zap.NewNop())
	r := setupRouter(h)

	rec := postJSON(t, r, "/api/availability/companies", gin.H{
		"serviceId": "plumbing",
		"date":      "2026-02-04",
		"time":      "whenever",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSnapshotFallsBackToStore(t *testing.T) {
	snapshots := &stubSnapshots{snapshot: &models.CompanyAvailabilitySnapshot{
		Key:       models.SnapshotKey("c1", "plumbing"),
		CompanyID: "c1", ServiceID: "plumbing",
		IsAvailable: true, AvailableWorkers: 2, TotalWorkers: 3,
	}}
	h := NewAvailabilityHandler(&stubAggregator{}, &stubBatch{}, snapshots, nil, zap.NewNop())
	r := setupRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/availability/snapshot/c1?serviceId=plumbing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success  bool                                `json:"success"`
		Cached   bool                                `json:"cached"`
		Snapshot models.CompanyAvailabilitySnapshot `json:"snapshot"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Cached)
	assert.Equal(t, "c1", resp.Snapshot.CompanyID)
	assert.Equal(t, 2, resp.Snapshot.AvailableWorkers)
}
