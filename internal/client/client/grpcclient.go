package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/orbitcheck/internal/client/models"
	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	cc          grpc.ClientConnInterface

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.AccessToken(); token != "" && !rpc.PublicMethods[method] {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient prepares a lazy connection to endpointURL. No I/O happens
// until the first call, so a scanner can start with the network down. Extra
// opts are applied after the defaults (a custom dialer, for instance).
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.cc = conn
	return c, nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) invoke(ctx context.Context, method string, req, resp any) error {
	if err := s.cc.Invoke(ctx, rpc.FullMethod(method), req, resp); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	return s.invoke(ctx, rpc.MethodPing, &emptypb.Empty{}, &emptypb.Empty{})
}

func (s *GRPCClient) GetSalt(ctx context.Context, username string) ([]byte, error) {
	req, err := rpc.EncodeSaltRequest(rpc.SaltRequest{Username: username})
	if err != nil {
		return nil, err
	}
	resp := &structpb.Struct{}
	if err := s.invoke(ctx, rpc.MethodGetSalt, req, resp); err != nil {
		return nil, err
	}
	out, err := rpc.DecodeSaltResponse(resp)
	if err != nil {
		return nil, err
	}
	return out.Salt, nil
}

func (s *GRPCClient) Login(ctx context.Context, username string, verifier []byte) (string, error) {
	req, err := rpc.EncodeLoginRequest(rpc.LoginRequest{Username: username, Verifier: verifier})
	if err != nil {
		return "", err
	}
	resp := &structpb.Struct{}
	if err := s.invoke(ctx, rpc.MethodLogin, req, resp); err != nil {
		return "", err
	}

	out := rpc.DecodeLoginResponse(resp)
	s.SetAccessToken(out.AccessToken)
	return out.OperatorID, nil
}

func (s *GRPCClient) FetchByEvent(ctx context.Context, eventID string) (*models.Roster, error) {
	req, err := rpc.EncodeFetchRequest(rpc.FetchRequest{EventID: eventID})
	if err != nil {
		return nil, err
	}
	resp := &structpb.Struct{}
	if err := s.invoke(ctx, rpc.MethodFetchByEvent, req, resp); err != nil {
		return nil, err
	}

	out := rpc.DecodeFetchResponse(resp)
	roster := &models.Roster{
		EventID:       out.EventID,
		EventName:     out.EventName,
		Registrations: make([]models.RemoteRegistration, 0, len(out.Registrations)),
	}
	for _, r := range out.Registrations {
		roster.Registrations = append(roster.Registrations, models.RemoteRegistration{
			RegistrationID: r.RegistrationID,
			QRSignature:    r.QRSignature,
			OrbitID:        r.OrbitID,
			EventID:        r.EventID,
			Name:           r.Name,
			Email:          r.Email,
			College:        r.College,
		})
	}
	return roster, nil
}

func (s *GRPCClient) UpdateByKey(ctx context.Context, u models.AttendanceUpdate) error {
	req, err := rpc.EncodeAttendanceRequest(rpc.AttendanceRequest{
		EventID:        u.EventID,
		RegistrationID: u.RegistrationID,
		Attended:       u.Attended,
		CheckInTime:    u.CheckInTime,
		CheckedInBy:    u.CheckedInBy,
	})
	if err != nil {
		return err
	}
	return s.invoke(ctx, rpc.MethodUpdateAttendance, req, &structpb.Struct{})
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return ErrUnavailable
	case codes.NotFound:
		return fmt.Errorf("%s: %w", st.Message(), common.ErrNotFound)
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
