package live

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/device"
	"liyu1981.xyz/water-quality-dashboard/pkg/gauge"
)

const DefaultPollInterval = 5000 * time.Millisecond

type DeviceClient interface {
	FetchReadings(ctx context.Context) device.FetchResult
	StartTest(ctx context.Context) device.TestResult
}

// Mirror receives every committed snapshot.
type Mirror interface {
	Put(ctx context.Context, snap Snapshot) error
}

type PollerOpts struct {
	StationID uint
	Client    DeviceClient
	Variant   gauge.Variant
	Interval  time.Duration
	Mirror    Mirror
}

type Poller struct {
	stationID uint
	client    DeviceClient
	variant   gauge.Variant
	interval  time.Duration
	mirror    Mirror
	store     *Store
	inFlight  atomic.Bool
	skipped   atomic.Int64
	now       func() time.Time
	logger    *zap.Logger
}

func NewPoller(opts PollerOpts) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	return &Poller{
		stationID: opts.StationID,
		client:    opts.Client,
		variant:   opts.Variant,
		interval:  opts.Interval,
		mirror:    opts.Mirror,
		store:     NewStore(Initial(opts.StationID, opts.Variant)),
		now:       time.Now,
		logger: common.GetLoggerWith(
			common.LoggerNamePoller,
			zap.String(common.LoggerFieldCategory, common.LoggerCategoryLive),
			zap.Uint("station_id", opts.StationID),
		),
	}
}

func (p *Poller) StationID() uint {
	return p.stationID
}

// Snapshot returns the last committed snapshot.
func (p *Poller) Snapshot() Snapshot {
	return p.store.Snapshot()
}

// Skipped returns how many scheduled ticks were collapsed into an in-flight one.
func (p *Poller) Skipped() int64 {
	return p.skipped.Load()
}

// Run ticks once immediately and then every interval until ctx is done. Scheduled ticks are
// dropped while a previous scheduled tick is still running.
func (p *Poller) Run(ctx context.Context) {
	var wg sync.WaitGroup
	defer wg.Wait()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	schedule := func() {
		if !p.inFlight.CompareAndSwap(false, true) {
			p.skipped.Add(1)
			p.logger.Debug("Skipping tick, previous tick still in flight")
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer p.inFlight.Store(false)
			p.Tick(ctx)
		}()
	}

	p.logger.Info("Poller started", zap.Duration("interval", p.interval))
	schedule()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Poller stopped")
			return
		case <-ticker.C:
			schedule()
		}
	}
}

// Tick polls the device once and commits the result unless a newer tick already has.
func (p *Poller) Tick(ctx context.Context) Snapshot {
	seq := p.store.Begin()
	fetch := p.client.FetchReadings(ctx)
	if ctx.Err() != nil {
		p.logger.Debug("Tick cancelled", zap.Uint64("seq", seq))
		return p.store.Abandon()
	}

	res := TickResult{Seq: seq, Fetch: fetch, CapturedAt: p.now()}
	snap, committed := p.store.Apply(func(prev Snapshot) Snapshot {
		return Reduce(prev, res, p.variant)
	})
	if !committed {
		p.logger.Debug("Dropping stale tick", zap.Uint64("seq", seq), zap.Uint64("committed_seq", snap.Seq))
		return snap
	}

	switch fetch.Outcome {
	case device.OutcomeOK:
		p.logger.Debug("Tick committed", zap.Uint64("seq", seq))
	case device.OutcomeBusy:
		p.logger.Info("Device busy", zap.Uint64("seq", seq))
	default:
		p.logger.Warn("Device offline", zap.Uint64("seq", seq), zap.Int("status_code", fetch.StatusCode), zap.Error(fetch.Err))
	}

	if p.mirror != nil {
		if err := p.mirror.Put(ctx, snap); err != nil {
			p.logger.Warn("Failed to mirror snapshot", zap.Error(err))
		}
	}
	return snap
}

// StartTest asks the device to run a test cycle. Whenever the device answered, whatever the
// status, the readings are refreshed right away.
func (p *Poller) StartTest(ctx context.Context) device.TestResult {
	res := p.client.StartTest(ctx)
	p.logger.Info("Start test",
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryTest),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("status_code", res.StatusCode),
	)
	if res.Responded {
		p.Tick(ctx)
	}
	return res
}
