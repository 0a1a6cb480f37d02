package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/orbitcheck/internal/client/client"
	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/orbitcheck/internal/cryptox"
	"github.com/dmitrijs2005/orbitcheck/internal/dbx"
)

// AuthService defines operator sign-in for the scanner.
//
//   - OnlineLogin: authenticate against the server and save the session for
//     offline use.
//   - OfflineLogin: check the password against the saved verifier and
//     restore the saved access token.
//   - Logout: forget the saved session.
type AuthService interface {
	OnlineLogin(ctx context.Context, username string, password []byte) (string, error)
	OfflineLogin(ctx context.Context, username string, password []byte) (string, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
}

func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

// OfflineLogin returns the operator id saved by the last online login.
// Missing data yields client.ErrLocalDataNotAvailable, a wrong username or
// password client.ErrUnauthorized.
func (a *authService) OfflineLogin(ctx context.Context, username string, password []byte) (string, error) {
	repo := metadata.NewSQLiteRepository(a.db)

	saved, err := repo.List(ctx)
	if err != nil {
		return "", err
	}

	savedSalt := saved[metadata.KeySalt]
	savedVerifier := saved[metadata.KeyVerifier]
	operatorID := string(saved[metadata.KeyOperatorID])
	if len(savedSalt) == 0 || len(savedVerifier) == 0 || operatorID == "" {
		return "", client.ErrLocalDataNotAvailable
	}
	if string(saved[metadata.KeyUsername]) != username {
		return "", client.ErrUnauthorized
	}

	if !cryptox.Equal(savedVerifier, cryptox.VerifierFor(password, savedSalt)) {
		return "", client.ErrUnauthorized
	}

	if token := string(saved[metadata.KeyAccessToken]); token != "" {
		a.client.SetAccessToken(token)
	}
	return operatorID, nil
}

// OnlineLogin authenticates against the server, saves the offline session
// and returns the operator id.
func (a *authService) OnlineLogin(ctx context.Context, username string, password []byte) (string, error) {
	salt, err := a.client.GetSalt(ctx, username)
	if err != nil {
		return "", fmt.Errorf("get salt error: %w", err)
	}

	verifier := cryptox.VerifierFor(password, salt)

	operatorID, err := a.client.Login(ctx, username, verifier)
	if err != nil {
		return "", fmt.Errorf("login error: %w", err)
	}

	if err := a.saveOfflineData(ctx, username, operatorID, salt, verifier, a.client.AccessToken()); err != nil {
		return "", fmt.Errorf("offline data saving error: %w", err)
	}
	return operatorID, nil
}

func (a *authService) saveOfflineData(ctx context.Context, username, operatorID string, salt, verifier []byte, token string) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		values := map[string][]byte{
			metadata.KeyUsername:    []byte(username),
			metadata.KeyOperatorID:  []byte(operatorID),
			metadata.KeySalt:        salt,
			metadata.KeyVerifier:    verifier,
			metadata.KeyAccessToken: []byte(token),
		}
		for k, v := range values {
			if len(v) == 0 {
				if err := repo.Delete(ctx, k); err != nil {
					return err
				}
				continue
			}
			if err := repo.Set(ctx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Logout removes the saved session. Cached rosters and the sync queue stay.
func (a *authService) Logout(ctx context.Context) error {
	a.client.SetAccessToken("")
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		for _, k := range []string{metadata.KeyUsername, metadata.KeyOperatorID, metadata.KeySalt, metadata.KeyVerifier, metadata.KeyAccessToken} {
			if err := repo.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
