package grpc

import (
	"context"

	"liyu1981.xyz/water-quality-dashboard/pkg/live"
	"liyu1981.xyz/water-quality-dashboard/pkg/monitor"
)

// SnapshotReader is where GetLive looks for a station no local poller is watching yet.
type SnapshotReader interface {
	Get(ctx context.Context, stationID uint) (live.Snapshot, error)
}

type LiveServer struct {
	Monitor          *monitor.Monitor
	Pollers          *live.Registry
	Snapshots        SnapshotReader
	RateLimiterStore *monitor.RateLimiterStore
}

func (s *LiveServer) CheckStationLimiter(stationID uint) bool {
	if s.RateLimiterStore == nil {
		return true
	}
	return s.RateLimiterStore.Allow(stationID)
}
