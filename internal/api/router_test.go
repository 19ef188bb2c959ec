package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"filament-station/config"
	"filament-station/internal/model"
	"filament-station/internal/station"
	"filament-station/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *station.Station) {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := testDB.DB()
		sqlDB.Close()
	})
	require.NoError(t, testDB.AutoMigrate(&model.Spool{}, &model.ActionLog{}, &model.PushSubscription{}))

	cfg := &config.Config{
		Server: config.ServerConfig{RateLimitPerSec: 1000, CacheTTLSeconds: 1},
		Station: config.StationConfig{
			Locations: []config.Location{
				{QR: "fs://loc/dryer", Name: "Dryer"},
			},
			PairWindow: 10 * time.Second,
		},
	}

	appStore := store.NewGormStore(testDB)
	st := station.New(cfg, appStore, nil)
	return NewRouter(cfg, appStore, st, nil), testDB, st
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetLocations(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/locations", "")
	require.Equal(t, http.StatusOK, w.Code)

	var locations []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &locations))
	require.Len(t, locations, 1)
	assert.Equal(t, "Dryer", locations[0]["name"])
	assert.Equal(t, "fs://loc/dryer", locations[0]["qr"])
}

func TestGetStatusInitial(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var snap station.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "Ready. Scan a spool.", snap.Status)
	assert.Nil(t, snap.Spool)
}

func TestManualScanFlowsThroughStation(t *testing.T) {
	router, testDB, st := newTestRouter(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go st.Run(ctx)

	w := doJSON(t, router, http.MethodPost, "/api/actions/scan", `{"payload":"fs://spool/abc-123"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	assert.Eventually(t, func() bool {
		var count int64
		testDB.Model(&model.Spool{}).Where("url = ?", "fs://spool/abc-123").Count(&count)
		return count == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestActionValidation(t *testing.T) {
	router, _, _ := newTestRouter(t)

	testCases := []struct {
		name string
		path string
		body string
	}{
		{name: "scan without payload", path: "/api/actions/scan", body: `{}`},
		{name: "weigh without grams", path: "/api/actions/weigh", body: `{}`},
		{name: "weigh negative", path: "/api/actions/weigh", body: `{"grams":-1}`},
		{name: "move without location", path: "/api/actions/move", body: `{}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestOpenWithoutSpool(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/actions/open", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSubscriptionLifecycle(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/subscriptions",
		`{"endpoint":"https://example.com/push","p256dh":"k","auth":"a"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/subscriptions?endpoint=https%3A%2F%2Fexample.com%2Fpush", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/subscriptions", `{"endpoint":"https://example.com/push"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/subscriptions?endpoint=https%3A%2F%2Fexample.com%2Fpush", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVAPIDKeyUnconfigured(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/vapid_public_key", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
