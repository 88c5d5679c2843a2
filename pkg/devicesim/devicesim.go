// Package devicesim emulates a station's sensor unit: it serves /readings and /start_test
// like the firmware does and, after a test cycle, uploads the sample to the dashboard.
package devicesim

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/device"
)

type Options struct {
	SensorID     string
	TestDuration time.Duration
	// UploadURL is the dashboard ingestion endpoint, e.g.
	// http://localhost:1080/dashboard?station_id=1. Empty disables uploads.
	UploadURL string
	Seed      int64
}

type Simulator struct {
	mu           sync.Mutex
	opts         Options
	engine       *gin.Engine
	rnd          *rand.Rand
	sample       Sample
	busyUntil    time.Time
	forcedStatus int
	now          func() time.Time
	uploader     *resty.Client
	logger       *zap.Logger
	readsServed  int
	testsStarted int
}

func New(opts Options) *Simulator {
	if opts.TestDuration <= 0 {
		opts.TestDuration = 10 * time.Second
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	s := &Simulator{
		opts:     opts,
		rnd:      rand.New(rand.NewSource(opts.Seed)),
		now:      time.Now,
		uploader: resty.New().SetTimeout(5 * time.Second),
		logger:   common.GetLoggerWith(common.LoggerNameDevice, zap.String("sensor_id", opts.SensorID)),
	}
	s.sample = GenerateSample(s.rnd, opts.SensorID)

	if !common.IsTestEnv() {
		gin.SetMode(gin.ReleaseMode)
	}
	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.engine.GET(device.ReadingsPath, s.getReadings)
	s.engine.POST(device.StartTestPath, s.postStartTest)

	return s
}

func (s *Simulator) Handler() http.Handler {
	return s.engine
}

// SetSample replaces the current readings.
func (s *Simulator) SetSample(sample Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sample = sample
}

// SetBusy makes the device report a running test cycle for d.
func (s *Simulator) SetBusy(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busyUntil = s.now().Add(d)
}

// ForceStatus makes every endpoint answer with code, 0 restores normal behaviour.
func (s *Simulator) ForceStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forcedStatus = code
}

func (s *Simulator) Stats() (readsServed, testsStarted int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readsServed, s.testsStarted
}

func (s *Simulator) busy() bool {
	return s.now().Before(s.busyUntil)
}

func (s *Simulator) getReadings(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.forcedStatus != 0 {
		c.Status(s.forcedStatus)
		return
	}
	if s.busy() {
		c.Status(http.StatusServiceUnavailable)
		return
	}

	s.readsServed++
	c.JSON(http.StatusOK, s.sample.ReadingsPayload())
}

func (s *Simulator) postStartTest(c *gin.Context) {
	s.mu.Lock()
	if s.forcedStatus != 0 {
		code := s.forcedStatus
		s.mu.Unlock()
		c.Status(code)
		return
	}
	if s.busy() {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"message": "test cycle already running"})
		return
	}

	s.testsStarted++
	s.busyUntil = s.now().Add(s.opts.TestDuration)
	next := GenerateSample(s.rnd, s.opts.SensorID)
	s.mu.Unlock()

	s.logger.Info("Test cycle started", zap.Duration("duration", s.opts.TestDuration))
	go s.finishCycle(next)

	c.JSON(http.StatusOK, gin.H{"message": "test started"})
}

func (s *Simulator) finishCycle(next Sample) {
	time.Sleep(s.opts.TestDuration)

	s.mu.Lock()
	s.sample = next
	s.mu.Unlock()

	if s.opts.UploadURL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Upload(ctx, next); err != nil {
		s.logger.Warn("Sample upload failed", zap.Error(err))
	}
}

// Upload posts one sample to the dashboard ingestion endpoint the way the firmware does.
func (s *Simulator) Upload(ctx context.Context, sample Sample) error {
	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	resp, err := s.uploader.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(sample.UploadBody()).
		SetResult(&result).
		SetError(&result).
		Post(s.opts.UploadURL)
	if err != nil {
		return fmt.Errorf("failed to reach dashboard: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("dashboard rejected sample (status %d): %s", resp.StatusCode(), result.Message)
	}

	s.logger.Info("Sample uploaded", zap.String("message", result.Message))
	return nil
}
