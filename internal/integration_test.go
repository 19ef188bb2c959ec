package internal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"filament-station/config"
	"filament-station/internal/camera"
	"filament-station/internal/model"
	"filament-station/internal/station"
	"filament-station/internal/store"
)

// feedSource is a FrameSource fed from a channel, so the test controls when
// each decode attempt appears on the camera.
type feedSource struct {
	frames chan string
	closed chan struct{}
}

func newFeedSource() *feedSource {
	return &feedSource{
		frames: make(chan string, 32),
		closed: make(chan struct{}),
	}
}

func (s *feedSource) Next() (string, bool, error) {
	select {
	case payload := <-s.frames:
		return payload, true, nil
	default:
		return "", false, nil
	}
}

func (s *feedSource) Close() error {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return nil
}

// TestScanPairingLifecycle runs the whole pipeline: camera frames through the
// debouncer and classifier into the station loop and down to SQLite. A spool
// is scanned, then a location, and the pair becomes one move.
func TestScanPairingLifecycle(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	require.NoError(t, testDB.AutoMigrate(&model.Spool{}, &model.ActionLog{}, &model.PushSubscription{}))

	cfg := &config.Config{
		Station: config.StationConfig{
			Locations: []config.Location{
				{QR: "fs://loc/dryer", Name: "Dryer"},
			},
			PairWindowSeconds: 10,
			PairWindow:        10 * time.Second,
		},
		Camera: config.CameraConfig{
			ScanIntervalMS: 5,
			ScanInterval:   5 * time.Millisecond,
		},
	}

	appStore := store.NewGormStore(testDB)
	st := station.New(cfg, appStore, nil)

	source := newFeedSource()
	poller := camera.NewPoller(cfg, source, st.EnqueueScan, st.ReportStatus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go st.Run(ctx)
	go poller.Run(ctx)

	// Two consecutive reads of the spool code pass the debouncer.
	source.frames <- "fs://spool/abc-123"
	source.frames <- "fs://spool/abc-123"

	assert.Eventually(t, func() bool {
		snap := st.Snapshot()
		return snap.Spool != nil && snap.Spool.Name == "Abc 123"
	}, 3*time.Second, 20*time.Millisecond, "the debounced spool scan reaches the station")

	var spool model.Spool
	require.NoError(t, testDB.Where("url = ?", "fs://spool/abc-123").First(&spool).Error)
	assert.Nil(t, spool.Location)

	// Wait out the debounce cooldown, then show the location code.
	time.Sleep(scanCooldownMargin)
	source.frames <- "fs://loc/dryer"
	source.frames <- "fs://loc/dryer"

	assert.Eventually(t, func() bool {
		var moved model.Spool
		if err := testDB.Where("url = ?", "fs://spool/abc-123").First(&moved).Error; err != nil {
			return false
		}
		return moved.Location != nil && *moved.Location == "Dryer"
	}, 3*time.Second, 20*time.Millisecond, "the spool/location pair becomes a move")

	var moveLogs []model.ActionLog
	require.NoError(t, testDB.Where("spool_id = ? AND action = ?", spool.ID, model.ActionMove).Find(&moveLogs).Error)
	require.Len(t, moveLogs, 1)
	require.NotNil(t, moveLogs[0].Location)
	assert.Equal(t, "Dryer", *moveLogs[0].Location)

	// Stopping the pipeline releases the camera.
	cancel()
	select {
	case <-source.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not release the camera on shutdown")
	}
}

// scanCooldownMargin is the debouncer cooldown plus slack for slow CI.
const scanCooldownMargin = 1200 * time.Millisecond

// TestLocationOnlyProducesNoMove feeds only a location scan; nothing may be
// written beyond a status update.
func TestLocationOnlyProducesNoMove(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open("file:integration_loc_only?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	require.NoError(t, testDB.AutoMigrate(&model.Spool{}, &model.ActionLog{}, &model.PushSubscription{}))

	cfg := &config.Config{
		Station: config.StationConfig{
			Locations:  []config.Location{{QR: "fs://loc/ams-1", Name: "AMS Slot 1"}},
			PairWindow: 10 * time.Second,
		},
		Camera: config.CameraConfig{ScanInterval: 5 * time.Millisecond},
	}

	appStore := store.NewGormStore(testDB)
	st := station.New(cfg, appStore, nil)
	source := newFeedSource()
	poller := camera.NewPoller(cfg, source, st.EnqueueScan, st.ReportStatus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go st.Run(ctx)
	go poller.Run(ctx)

	source.frames <- "fs://loc/ams-1"
	source.frames <- "fs://loc/ams-1"

	assert.Eventually(t, func() bool {
		return st.Snapshot().Status == "Location scanned: AMS Slot 1. (Scan spool to move.)"
	}, 3*time.Second, 20*time.Millisecond)

	var spoolCount, logCount int64
	testDB.Model(&model.Spool{}).Count(&spoolCount)
	testDB.Model(&model.ActionLog{}).Count(&logCount)
	assert.Equal(t, int64(0), spoolCount)
	assert.Equal(t, int64(0), logCount)
}
