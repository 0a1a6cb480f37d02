// Package client is the scanner's connection to the roster server.
//
// GRPCClient implements Client over a plain grpc.ClientConn. Messages are
// structpb.Struct values built by package rpc, so no generated stubs are
// needed. The access token obtained by Login is attached to every
// non-public call by a unary interceptor.
//
// Status codes are mapped to sentinel errors that callers match with
// errors.Is: ErrUnavailable, ErrUnauthorized and common.ErrNotFound.
package client
