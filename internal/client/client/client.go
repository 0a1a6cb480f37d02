package client

import (
	"context"

	"github.com/dmitrijs2005/orbitcheck/internal/client/models"
)

// RemoteStore is the part of the server the attendance core depends on: the
// list-by-event read and the single-record attendance update.
type RemoteStore interface {
	FetchByEvent(ctx context.Context, eventID string) (*models.Roster, error)
	UpdateByKey(ctx context.Context, update models.AttendanceUpdate) error
}

// Client is the full scanner-to-server API.
type Client interface {
	RemoteStore
	Close() error
	Ping(ctx context.Context) error
	GetSalt(ctx context.Context, username string) ([]byte, error)
	// Login authenticates the operator and keeps the access token for later
	// calls. It returns the operator id.
	Login(ctx context.Context, username string, verifier []byte) (string, error)
	// SetAccessToken restores a token saved from an earlier session.
	SetAccessToken(token string)
	AccessToken() string
}
