// Package metadata is a small key/value table on the scanner device. It holds
// the operator session (identity, offline-login salt and verifier, access
// token) and the currently selected event, so a restarted scanner can keep
// working without the network.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyUsername    = "operator_username"
	KeyOperatorID  = "operator_id"
	KeySalt        = "salt"
	KeyVerifier    = "verifier"
	KeyAccessToken = "access_token"
	KeyActiveEvent = "active_event"
	KeyLastSyncAt  = "last_sync_at"
)

// Repository stores raw values. Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
