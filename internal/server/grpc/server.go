// Package grpc exposes the roster to door scanners: operator login, roster
// download and attendance writes.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/orbitcheck/internal/logging"
	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
	"google.golang.org/grpc"
)

type operatorSvc interface {
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifier []byte) (string, string, error)
}

type attendanceSvc interface {
	FetchByEvent(ctx context.Context, eventID string) (*models.Event, []models.Registration, error)
	UpdateAttendance(ctx context.Context, in models.CheckIn) error
}

type GRPCServer struct {
	address    string
	operators  operatorSvc
	attendance attendanceSvc
	logger     logging.Logger
	jwtSecret  []byte
}

func NewGRPCServer(a string, l logging.Logger, ops operatorSvc, att attendanceSvc, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		operators:  ops,
		attendance: att,
		jwtSecret:  []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	RegisterRosterServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}
