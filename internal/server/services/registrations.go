package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/logging"
	"github.com/dmitrijs2005/orbitcheck/internal/qrsig"
	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
	"github.com/dmitrijs2005/orbitcheck/internal/server/repositories/registrations"
	"github.com/dmitrijs2005/orbitcheck/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// generateSignature is a test seam for qrsig.Generate.
var generateSignature = qrsig.Generate

// RegistrationService owns events and attendee registrations.
type RegistrationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	newID       func() string
}

func NewRegistrationService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *RegistrationService {
	return &RegistrationService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "registrations"),
		newID:       uuid.NewString,
	}
}

// CreateEvent stores a new event. The id ends up inside QR signatures, so it
// must not contain the signature delimiter.
func (s *RegistrationService) CreateEvent(ctx context.Context, id, name string) (*models.Event, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return nil, fmt.Errorf("%w: event id and name are required", common.ErrValidation)
	}
	if strings.Contains(id, "|") {
		return nil, fmt.Errorf("%w: event id contains %q", common.ErrValidation, "|")
	}

	return s.repomanager.Events(s.db).Create(ctx, &models.Event{ID: id, Name: name})
}

func (s *RegistrationService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.repomanager.Events(s.db).GetByID(ctx, id)
}

// Register issues a pass for one attendee. The signature token is discarded
// inside qrsig; a signature collision is retried once with a fresh token.
func (s *RegistrationService) Register(ctx context.Context, eventID string, in models.NewRegistration) (*models.Registration, error) {
	if _, err := s.repomanager.Events(s.db).GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	fields := qrsig.Fields{
		OrbitID:    strings.TrimSpace(in.OrbitID),
		GovIDLast4: strings.TrimSpace(in.GovIDLast4),
		FirstName:  strings.TrimSpace(in.FirstName),
		EventID:    eventID,
	}

	repo := s.repomanager.Registrations(s.db)

	const attempts = 2
	var lastErr error
	for i := 0; i < attempts; i++ {
		sig, err := generateSignature(fields)
		if err != nil {
			return nil, err
		}

		reg, err := repo.Create(ctx, &models.Registration{
			ID:          s.newID(),
			EventID:     eventID,
			OrbitID:     fields.OrbitID,
			Name:        strings.TrimSpace(in.Name),
			Email:       strings.TrimSpace(in.Email),
			College:     strings.TrimSpace(in.College),
			QRSignature: sig,
		})
		if err == nil {
			s.log.Info(ctx, "registered attendee", "event_id", eventID, "registration_id", reg.ID)
			return reg, nil
		}
		if !errors.Is(err, registrations.ErrSignatureCollision) {
			return nil, err
		}
		s.log.Warn(ctx, "qr signature collision, retrying", "event_id", eventID)
		lastErr = err
	}

	return nil, lastErr
}
