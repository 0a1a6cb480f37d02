package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/rpc"
	"github.com/dmitrijs2005/orbitcheck/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func withToken(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, token))
}

func TestInterceptor_PublicMethodsSkipAuth(t *testing.T) {
	s := newServer(&fakeOperators{}, &fakeAttendance{})

	for _, m := range []string{rpc.MethodPing, rpc.MethodGetSalt, rpc.MethodLogin} {
		called := false
		h := func(ctx context.Context, req any) (any, error) {
			called = true
			return "ok", nil
		}
		resp, err := s.accessTokenInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(m)}, h)
		require.NoError(t, err, m)
		assert.True(t, called, m)
		assert.Equal(t, "ok", resp)
	}
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newServer(&fakeOperators{}, &fakeAttendance{})
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.MethodFetchByEvent)}

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_InvalidAndExpiredToken(t *testing.T) {
	s := newServer(&fakeOperators{}, &fakeAttendance{})
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.MethodUpdateAttendance)}
	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(withToken("garbage"), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	expired, err := auth.GenerateToken("op-1", []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	_, err = s.accessTokenInterceptor(withToken(expired), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	foreign, err := auth.GenerateToken("op-1", []byte("other-secret"), time.Hour)
	require.NoError(t, err)
	_, err = s.accessTokenInterceptor(withToken(foreign), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_ValidToken_SetsOperatorID(t *testing.T) {
	s := newServer(&fakeOperators{}, &fakeAttendance{})
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.MethodFetchByEvent)}

	tok, err := auth.GenerateToken("op-42", []byte(testSecret), time.Hour)
	require.NoError(t, err)

	var got string
	h := func(ctx context.Context, req any) (any, error) {
		got, _ = operatorIDFromContext(ctx)
		return nil, nil
	}

	_, err = s.accessTokenInterceptor(withToken(tok), nil, info, h)
	require.NoError(t, err)
	assert.Equal(t, "op-42", got)
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := newServer(&fakeOperators{}, &fakeAttendance{})
	info := &grpc.UnaryServerInfo{FullMethod: rpc.FullMethod(rpc.MethodPing)}

	resp, err := s.loggingInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.NotFound, "x")
	})
	assert.Nil(t, resp)
	assert.Equal(t, codes.NotFound, status.Code(err))
}
