package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/live"
	"liyu1981.xyz/water-quality-dashboard/pkg/models"
	"liyu1981.xyz/water-quality-dashboard/pkg/monitor"
)

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func (s *LiveServer) station(req *wrapperspb.UInt64Value) (*models.Station, error) {
	if req.GetValue() == 0 {
		return nil, status.Error(codes.InvalidArgument, "validation error: station id can not be empty")
	}
	station, err := s.Monitor.Station.GetStation(uint(req.GetValue()))
	if err != nil {
		if errors.Is(err, monitor.ErrStationNotFound) {
			return nil, status.Error(codes.NotFound, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return station, nil
}

func (s *LiveServer) GetLive(ctx context.Context, req *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	station, err := s.station(req)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshot(ctx, station)
	if err != nil {
		return nil, err
	}

	out, err := toStruct(snap)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode snapshot: %v", err))
	}
	return out, nil
}

// snapshot prefers a poller already running here, then the shared cache, and only then
// starts polling the station locally.
func (s *LiveServer) snapshot(ctx context.Context, station *models.Station) (live.Snapshot, error) {
	if s.Pollers != nil {
		if p, ok := s.Pollers.Get(station.ID); ok {
			return p.Snapshot(), nil
		}
	}

	if s.Snapshots != nil {
		snap, err := s.Snapshots.Get(ctx, station.ID)
		if err == nil {
			return snap, nil
		}
		common.GetLoggerWith(common.LoggerNameGrpcServer).Debug("No cached snapshot", zap.Uint("station_id", station.ID), zap.Error(err))
	}

	if s.Pollers == nil {
		return live.Snapshot{}, status.Error(codes.Unavailable, "live polling is disabled")
	}
	return s.Pollers.Ensure(*station).Snapshot(), nil
}

func (s *LiveServer) StartTest(ctx context.Context, req *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	station, err := s.station(req)
	if err != nil {
		return nil, err
	}
	if s.Pollers == nil {
		return nil, status.Error(codes.Unavailable, "live polling is disabled")
	}

	p := s.Pollers.Ensure(*station)
	res := p.StartTest(ctx)

	common.GetLoggerWith(
		common.LoggerNameGrpcServer,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryTest),
	).Info("Start test requested", zap.Uint("station_id", station.ID), zap.String("outcome", string(res.Outcome)))

	out, err := toStruct(struct {
		Outcome    string        `json:"outcome"`
		StatusCode int           `json:"status_code"`
		Message    string        `json:"message"`
		Snapshot   live.Snapshot `json:"snapshot"`
	}{
		Outcome:    string(res.Outcome),
		StatusCode: res.StatusCode,
		Message:    res.Message,
		Snapshot:   p.Snapshot(),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode result: %v", err))
	}
	return out, nil
}
