package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/orbitcheck/internal/client/models"
	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/registrations"
	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/dbx"
	"github.com/dmitrijs2005/orbitcheck/internal/logging"
)

type Verifier struct {
	regs registrations.Repository
	log  logging.Logger
}

func NewVerifier(db dbx.DBTX, log logging.Logger) *Verifier {
	return &Verifier{regs: registrations.NewSQLiteRepository(db), log: log}
}

// Verify looks the signature up in the local cache. It never returns an
// error: every failure is reported as an invalid pass with Reason set.
func (v *Verifier) Verify(ctx context.Context, qrSignature string, eventID string) models.VerifyResult {
	reg, err := v.regs.GetBySignature(ctx, qrSignature)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			v.log.Error(ctx, "verify lookup failed", "error", err)
		}
		return invalid(err)
	}

	if reg.EventID != eventID {
		v.log.Debug(ctx, "pass for another event", "registration_id", reg.RegistrationID, "event_id", eventID)
		return invalid(common.ErrWrongEvent)
	}

	if reg.AttendanceMarked {
		return models.VerifyResult{
			Status:       models.VerifyAlreadyScanned,
			Message:      "already checked in",
			Registration: reg,
			MarkedAt:     reg.MarkedAt,
		}
	}

	return models.VerifyResult{
		Status:       models.VerifyValid,
		Message:      "welcome, " + reg.Name,
		Registration: reg,
	}
}

func invalid(reason error) models.VerifyResult {
	return models.VerifyResult{
		Status:  models.VerifyInvalid,
		Message: common.InvalidPassMessage,
		Reason:  reason,
	}
}
