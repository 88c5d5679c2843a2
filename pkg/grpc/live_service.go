package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service only exchanges protobuf well-known types: the request is the station id and the
// reply is the JSON shape of the HTTP API as a Struct.
//
//	service LiveService {
//	  rpc GetLive(google.protobuf.UInt64Value) returns (google.protobuf.Struct);
//	  rpc StartTest(google.protobuf.UInt64Value) returns (google.protobuf.Struct);
//	}
const (
	LiveServiceName             = "wqdashboard.LiveService"
	LiveServiceGetLiveMethod    = "/wqdashboard.LiveService/GetLive"
	LiveServiceStartTestMethod  = "/wqdashboard.LiveService/StartTest"
	liveServiceMetadataFilename = "wqdashboard/live_service.proto"
)

type LiveServiceServer interface {
	GetLive(ctx context.Context, req *wrapperspb.UInt64Value) (*structpb.Struct, error)
	StartTest(ctx context.Context, req *wrapperspb.UInt64Value) (*structpb.Struct, error)
}

func unaryHandler(method string, call func(LiveServiceServer, context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(wrapperspb.UInt64Value)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LiveServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LiveServiceServer), ctx, req.(*wrapperspb.UInt64Value))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var LiveServiceDesc = grpc.ServiceDesc{
	ServiceName: LiveServiceName,
	HandlerType: (*LiveServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetLive",
			Handler:    unaryHandler(LiveServiceGetLiveMethod, LiveServiceServer.GetLive),
		},
		{
			MethodName: "StartTest",
			Handler:    unaryHandler(LiveServiceStartTestMethod, LiveServiceServer.StartTest),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: liveServiceMetadataFilename,
}

func RegisterLiveServiceServer(s grpc.ServiceRegistrar, srv LiveServiceServer) {
	s.RegisterService(&LiveServiceDesc, srv)
}

type LiveServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLiveServiceClient(cc grpc.ClientConnInterface) *LiveServiceClient {
	return &LiveServiceClient{cc: cc}
}

func (c *LiveServiceClient) GetLive(ctx context.Context, stationID uint64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, LiveServiceGetLiveMethod, wrapperspb.UInt64(stationID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LiveServiceClient) StartTest(ctx context.Context, stationID uint64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, LiveServiceStartTestMethod, wrapperspb.UInt64(stationID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
