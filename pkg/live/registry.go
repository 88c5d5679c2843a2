package live

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/device"
	"liyu1981.xyz/water-quality-dashboard/pkg/gauge"
	"liyu1981.xyz/water-quality-dashboard/pkg/models"
)

type ClientFactory func(station models.Station) DeviceClient

type RegistryOpts struct {
	Variant        gauge.Variant
	Interval       time.Duration
	DefaultBaseURL string
	DeviceTimeout  time.Duration
	Mirror         Mirror
	// NewClient overrides how device clients are built, mostly for tests.
	NewClient ClientFactory
}

// Registry owns one running Poller per station.
type Registry struct {
	mu      sync.Mutex
	opts    RegistryOpts
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	pollers map[uint]*Poller
	closed  bool
	logger  *zap.Logger
}

func NewRegistry(opts RegistryOpts) *Registry {
	if opts.NewClient == nil {
		opts.NewClient = func(station models.Station) DeviceClient {
			baseURL := station.DeviceBaseURL
			if baseURL == "" {
				baseURL = opts.DefaultBaseURL
			}
			return device.NewClient(baseURL, opts.DeviceTimeout)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		pollers: map[uint]*Poller{},
		logger: common.GetLoggerWith(
			common.LoggerNamePoller,
			zap.String(common.LoggerFieldCategory, common.LoggerCategoryStation),
		),
	}
}

// Ensure returns the station's Poller, starting it on first use.
func (r *Registry) Ensure(station models.Station) *Poller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.pollers[station.ID]; ok {
		return p
	}

	p := NewPoller(PollerOpts{
		StationID: station.ID,
		Client:    r.opts.NewClient(station),
		Variant:   r.opts.Variant,
		Interval:  r.opts.Interval,
		Mirror:    r.opts.Mirror,
	})
	r.pollers[station.ID] = p
	if r.closed {
		return p
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		p.Run(r.ctx)
	}()
	r.logger.Info("Started poller", zap.Uint("station_id", station.ID))
	return p
}

func (r *Registry) Get(stationID uint) (*Poller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pollers[stationID]
	return p, ok
}

// Close stops every Poller and waits for in-flight ticks to return.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}
