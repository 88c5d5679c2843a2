package monitor

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterStore manages per-station ingestion limiters: station_id -> rate limiter
type RateLimiterStore struct {
	limiters     map[uint]*rate.Limiter
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
}

func NewRateLimiterStore(defaultRate rate.Limit, defaultBurst int) *RateLimiterStore {
	return &RateLimiterStore{
		limiters:     make(map[uint]*rate.Limiter),
		defaultRate:  defaultRate,
		defaultBurst: defaultBurst,
	}
}

func (s *RateLimiterStore) GetLimiter(stationID uint) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[stationID]
	if !exists {
		limiter = rate.NewLimiter(s.defaultRate, s.defaultBurst)
		s.limiters[stationID] = limiter
	}
	return limiter
}

func (s *RateLimiterStore) SetLimiter(stationID uint, stationRate rate.Limit, stationBurst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiters[stationID] = rate.NewLimiter(stationRate, stationBurst)
}

// Allow reports whether the station may ingest one more sample now.
func (s *RateLimiterStore) Allow(stationID uint) bool {
	return s.GetLimiter(stationID).Allow()
}

func (s *RateLimiterStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}
