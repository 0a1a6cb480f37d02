// Package common contains shared constants and sentinel errors used by the
// scanner and the server.
package common

import "time"

// AccessTokenHeaderName is the gRPC metadata key used to carry the operator
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// InvalidPassMessage is the single operator-facing message for a pass that is
// unknown or belongs to another event. Both cases must read the same.
const InvalidPassMessage = "invalid or unrecognised pass"

const (
	DefaultCacheTTL        = 36 * time.Hour
	DefaultSyncedRetention = 7 * 24 * time.Hour
)
