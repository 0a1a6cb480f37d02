package grpc

import (
	"context"

	"github.com/dmitrijs2005/orbitcheck/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// RosterServer is the server side of rpc.ServiceName. Messages are
// google.protobuf.Struct shaped by the rpc package DTOs.
type RosterServer interface {
	Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	GetSalt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FetchByEvent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateAttendance(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var rosterServiceDesc = grpc.ServiceDesc{
	ServiceName: rpc.ServiceName,
	HandlerType: (*RosterServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: rpc.MethodPing, Handler: pingHandler},
		structMethod(rpc.MethodGetSalt, RosterServer.GetSalt),
		structMethod(rpc.MethodLogin, RosterServer.Login),
		structMethod(rpc.MethodFetchByEvent, RosterServer.FetchByEvent),
		structMethod(rpc.MethodUpdateAttendance, RosterServer.UpdateAttendance),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "orbitcheck/roster/v1",
}

// RegisterRosterServer attaches srv to s.
func RegisterRosterServer(s grpc.ServiceRegistrar, srv RosterServer) {
	s.RegisterService(&rosterServiceDesc, srv)
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RosterServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: rpc.FullMethod(rpc.MethodPing)}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RosterServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func structMethod(name string, call func(RosterServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(RosterServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: rpc.FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(RosterServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
