package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/cryptox"
	"github.com/dmitrijs2005/orbitcheck/internal/server/auth"
	"github.com/dmitrijs2005/orbitcheck/internal/server/config"
	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
	"github.com/dmitrijs2005/orbitcheck/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// OperatorService manages door operator accounts and issues access tokens.
type OperatorService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewOperatorService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *OperatorService {
	return &OperatorService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Add creates an operator from a plain password. Only used by the server's
// seeding flag; scanners never send passwords.
func (s *OperatorService) Add(ctx context.Context, username string, password []byte) (*models.Operator, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) == 0 {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}

	salt := cryptox.NewSalt()
	op := &models.Operator{
		ID:       uuid.NewString(),
		Username: username,
		Salt:     salt,
		Verifier: cryptox.VerifierFor(password, salt),
	}

	repo := s.repomanager.Operators(s.db)
	created, err := repo.Create(ctx, op)
	if err != nil {
		return nil, fmt.Errorf("error creating operator: %w", err)
	}
	return created, nil
}

// GetSalt returns the operator's salt. Unknown usernames get a stable fake
// salt so the answer does not reveal whether the account exists.
func (s *OperatorService) GetSalt(ctx context.Context, username string) ([]byte, error) {
	repo := s.repomanager.Operators(s.db)
	op, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return s.fakeSalt(username), nil
		}
		return nil, common.ErrInternal
	}
	return op.Salt, nil
}

// Login checks verifier against the stored one and returns a fresh access
// token with the operator id.
func (s *OperatorService) Login(ctx context.Context, username string, verifier []byte) (string, string, error) {
	repo := s.repomanager.Operators(s.db)
	op, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", "", common.ErrUnauthorized
		}
		return "", "", common.ErrInternal
	}
	if !cryptox.Equal(op.Verifier, verifier) {
		return "", "", common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(op.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", "", common.ErrInternal
	}
	return token, op.ID, nil
}

func (s *OperatorService) fakeSalt(username string) []byte {
	mac := hmac.New(sha256.New, s.jwtSecret)
	mac.Write([]byte("salt:" + username))
	return mac.Sum(nil)
}

// ParseOperatorSpec splits the "name:password" form of the seeding flag.
func ParseOperatorSpec(spec string) (string, []byte, error) {
	name, password, ok := strings.Cut(spec, ":")
	if !ok || strings.TrimSpace(name) == "" || password == "" {
		return "", nil, fmt.Errorf("%w: operator must be given as name:password", common.ErrValidation)
	}
	return strings.TrimSpace(name), []byte(password), nil
}
