package grpc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/logging"
	"github.com/dmitrijs2005/orbitcheck/internal/rpc"
	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ---- fakes ----

type fakeOperators struct {
	salt     []byte
	saltErr  error
	token    string
	opID     string
	loginErr error
	gotUser  string
}

func (f *fakeOperators) GetSalt(_ context.Context, username string) ([]byte, error) {
	f.gotUser = username
	return f.salt, f.saltErr
}

func (f *fakeOperators) Login(_ context.Context, username string, verifier []byte) (string, string, error) {
	f.gotUser = username
	if f.loginErr != nil {
		return "", "", f.loginErr
	}
	if string(verifier) != "good-verifier" {
		return "", "", common.ErrUnauthorized
	}
	return f.token, f.opID, nil
}

type fakeAttendance struct {
	mu        sync.Mutex
	event     *models.Event
	regs      []models.Registration
	fetchErr  error
	updateErr error
	updates   []models.CheckIn
}

func (f *fakeAttendance) FetchByEvent(_ context.Context, eventID string) (*models.Event, []models.Registration, error) {
	if f.fetchErr != nil {
		return nil, nil, f.fetchErr
	}
	if f.event == nil || f.event.ID != eventID {
		return nil, nil, common.ErrNotFound
	}
	return f.event, f.regs, nil
}

func (f *fakeAttendance) UpdateAttendance(_ context.Context, in models.CheckIn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, in)
	return nil
}

func (f *fakeAttendance) Updates() []models.CheckIn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CheckIn(nil), f.updates...)
}

// ---- helpers ----

const testSecret = "k"

func newServer(ops operatorSvc, att attendanceSvc) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Discard(), ops, att, testSecret)
}

func sampleAttendance() *fakeAttendance {
	return &fakeAttendance{
		event: &models.Event{ID: "E1", Name: "Orbit Launch"},
		regs: []models.Registration{
			{ID: "r1", EventID: "E1", OrbitID: "ORB-1", Name: "Ann", Email: "ann@x", College: "CMU", QRSignature: "sig-1"},
			{ID: "r2", EventID: "E1", OrbitID: "ORB-2", Name: "Bob", Email: "bob@x", QRSignature: "sig-2"},
		},
	}
}

// structOf returns a helper that unwraps (msg, err) from the rpc encoders.
func structOf(t *testing.T) func(*structpb.Struct, error) *structpb.Struct {
	return func(s *structpb.Struct, err error) *structpb.Struct {
		t.Helper()
		require.NoError(t, err)
		return s
	}
}

// ---- tests ----

func TestPing_OK(t *testing.T) {
	s := newServer(&fakeOperators{}, &fakeAttendance{})
	resp, err := s.Ping(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestGetSalt(t *testing.T) {
	st := structOf(t)
	ops := &fakeOperators{salt: []byte("0123456789")}
	s := newServer(ops, &fakeAttendance{})

	resp, err := s.GetSalt(context.Background(), st(rpc.EncodeSaltRequest(rpc.SaltRequest{Username: "door1"})))
	require.NoError(t, err)
	out, err := rpc.DecodeSaltResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789"), out.Salt)
	assert.Equal(t, "door1", ops.gotUser)

	_, err = s.GetSalt(context.Background(), st(rpc.EncodeSaltRequest(rpc.SaltRequest{})))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	ops.saltErr = common.ErrInternal
	_, err = s.GetSalt(context.Background(), st(rpc.EncodeSaltRequest(rpc.SaltRequest{Username: "door1"})))
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestLogin(t *testing.T) {
	st := structOf(t)
	ops := &fakeOperators{token: "tok", opID: "op-1"}
	s := newServer(ops, &fakeAttendance{})
	ctx := context.Background()

	resp, err := s.Login(ctx, st(rpc.EncodeLoginRequest(rpc.LoginRequest{Username: "door1", Verifier: []byte("good-verifier")})))
	require.NoError(t, err)
	assert.Equal(t, rpc.LoginResponse{AccessToken: "tok", OperatorID: "op-1"}, rpc.DecodeLoginResponse(resp))

	_, err = s.Login(ctx, st(rpc.EncodeLoginRequest(rpc.LoginRequest{Username: "door1", Verifier: []byte("bad")})))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ops.loginErr = errors.New("db down")
	_, err = s.Login(ctx, st(rpc.EncodeLoginRequest(rpc.LoginRequest{Username: "door1", Verifier: []byte("good-verifier")})))
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.NotContains(t, status.Convert(err).Message(), "db down")

	bad := st(structpb.NewStruct(map[string]any{"username": "door1", "verifier": "%%%"}))
	_, err = s.Login(ctx, bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestFetchByEvent(t *testing.T) {
	st := structOf(t)
	att := sampleAttendance()
	s := newServer(&fakeOperators{}, att)
	ctx := context.WithValue(context.Background(), operatorIDKey, "op-1")

	resp, err := s.FetchByEvent(ctx, st(rpc.EncodeFetchRequest(rpc.FetchRequest{EventID: "E1"})))
	require.NoError(t, err)

	out := rpc.DecodeFetchResponse(resp)
	assert.Equal(t, "E1", out.EventID)
	assert.Equal(t, "Orbit Launch", out.EventName)
	require.Len(t, out.Registrations, 2)
	assert.Equal(t, rpc.Registration{
		RegistrationID: "r1", QRSignature: "sig-1", OrbitID: "ORB-1", EventID: "E1",
		Name: "Ann", Email: "ann@x", College: "CMU",
	}, out.Registrations[0])

	_, err = s.FetchByEvent(ctx, st(rpc.EncodeFetchRequest(rpc.FetchRequest{EventID: "nope"})))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = s.FetchByEvent(ctx, st(rpc.EncodeFetchRequest(rpc.FetchRequest{})))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	att.fetchErr = errors.New("db down")
	_, err = s.FetchByEvent(ctx, st(rpc.EncodeFetchRequest(rpc.FetchRequest{EventID: "E1"})))
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestUpdateAttendance(t *testing.T) {
	st := structOf(t)
	att := sampleAttendance()
	s := newServer(&fakeOperators{}, att)
	ctx := context.WithValue(context.Background(), operatorIDKey, "op-token")
	at := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)

	req := rpc.AttendanceRequest{EventID: "E1", RegistrationID: "r1", Attended: true, CheckInTime: at, CheckedInBy: "op-marker"}
	resp, err := s.UpdateAttendance(ctx, st(rpc.EncodeAttendanceRequest(req)))
	require.NoError(t, err)
	assert.True(t, rpc.DecodeAttendanceResponse(resp).Updated)

	req.CheckedInBy = ""
	_, err = s.UpdateAttendance(ctx, st(rpc.EncodeAttendanceRequest(req)))
	require.NoError(t, err)

	got := att.Updates()
	require.Len(t, got, 2)
	assert.Equal(t, "op-marker", got[0].CheckedInBy, "marker recorded on device wins")
	assert.Equal(t, "op-token", got[1].CheckedInBy, "token holder used as fallback")
	assert.True(t, got[0].CheckInTime.Equal(at))
}

func TestUpdateAttendance_Errors(t *testing.T) {
	st := structOf(t)
	att := sampleAttendance()
	s := newServer(&fakeOperators{}, att)
	ctx := context.Background()
	at := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)

	unset := rpc.AttendanceRequest{EventID: "E1", RegistrationID: "r1", Attended: false, CheckInTime: at}
	_, err := s.UpdateAttendance(ctx, st(rpc.EncodeAttendanceRequest(unset)))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	noTime := st(structpb.NewStruct(map[string]any{"event_id": "E1", "registration_id": "r1", "attendance_status": true}))
	_, err = s.UpdateAttendance(ctx, noTime)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	att.updateErr = common.ErrNotFound
	ok := rpc.AttendanceRequest{EventID: "E1", RegistrationID: "r9", Attended: true, CheckInTime: at, CheckedInBy: "op-1"}
	_, err = s.UpdateAttendance(ctx, st(rpc.EncodeAttendanceRequest(ok)))
	assert.Equal(t, codes.NotFound, status.Code(err))

	att.updateErr = common.ErrValidation
	_, err = s.UpdateAttendance(ctx, st(rpc.EncodeAttendanceRequest(ok)))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
