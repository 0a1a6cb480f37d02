package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/rpc"
	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStatus maps service sentinels to gRPC codes. Unknown errors are logged
// and reported as Internal without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	default:
		s.logger.Error(ctx, err.Error())
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := rpc.DecodeSaltRequest(in)
	if req.Username == "" {
		return nil, status.Error(codes.InvalidArgument, "username is required")
	}

	salt, err := s.operators.GetSalt(ctx, req.Username)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return rpc.EncodeSaltResponse(rpc.SaltResponse{Salt: salt})
}

func (s *GRPCServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := rpc.DecodeLoginRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	token, operatorID, err := s.operators.Login(ctx, req.Username, req.Verifier)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "operator logged in", "username", req.Username)
	return rpc.EncodeLoginResponse(rpc.LoginResponse{AccessToken: token, OperatorID: operatorID})
}

func (s *GRPCServer) FetchByEvent(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := rpc.DecodeFetchRequest(in)
	if req.EventID == "" {
		return nil, status.Error(codes.InvalidArgument, "event_id is required")
	}

	event, regs, err := s.attendance.FetchByEvent(ctx, req.EventID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp := rpc.FetchResponse{
		EventID:       event.ID,
		EventName:     event.Name,
		Registrations: make([]rpc.Registration, 0, len(regs)),
	}
	for _, r := range regs {
		resp.Registrations = append(resp.Registrations, rpc.Registration{
			RegistrationID: r.ID,
			QRSignature:    r.QRSignature,
			OrbitID:        r.OrbitID,
			EventID:        r.EventID,
			Name:           r.Name,
			Email:          r.Email,
			College:        r.College,
		})
	}

	operatorID, _ := operatorIDFromContext(ctx)
	s.logger.Info(ctx, "roster fetched", "event_id", event.ID, "records", len(regs), "operator_id", operatorID)
	return rpc.EncodeFetchResponse(resp)
}

// UpdateAttendance records a check-in pushed from a scanner queue. The
// operator stored is the one who marked the pass on the device; the token
// holder is used only when the request carries none.
func (s *GRPCServer) UpdateAttendance(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := rpc.DecodeAttendanceRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if !req.Attended {
		return nil, status.Error(codes.InvalidArgument, "attendance can only be set, not cleared")
	}

	checkedInBy := req.CheckedInBy
	if checkedInBy == "" {
		checkedInBy, _ = operatorIDFromContext(ctx)
	}

	err = s.attendance.UpdateAttendance(ctx, models.CheckIn{
		EventID:        req.EventID,
		RegistrationID: req.RegistrationID,
		CheckInTime:    req.CheckInTime,
		CheckedInBy:    checkedInBy,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return rpc.EncodeAttendanceResponse(rpc.AttendanceResponse{Updated: true})
}
