package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/orbitcheck/internal/client/models"
	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/qrsig"
)

// Scan verifies a decoded QR payload against the active event and checks the
// attendee in when the pass is valid.
func (a *App) Scan(ctx context.Context, qrSignature string) error {
	return a.check(ctx, qrSignature, true)
}

// Verify reports what a scan would do without marking anything.
func (a *App) Verify(ctx context.Context, qrSignature string) error {
	return a.check(ctx, qrSignature, false)
}

func (a *App) check(ctx context.Context, qrSignature string, mark bool) error {
	if qrSignature == "" {
		return errors.New("usage: scan <signature>")
	}

	eventID, err := a.activeEvent()
	if err != nil {
		return err
	}

	operatorID := ""
	if mark {
		if operatorID, err = a.requireOperator(); err != nil {
			return err
		}
	}

	valid, err := a.roster.IsValid(ctx, eventID)
	if err != nil {
		return err
	}
	if !valid {
		return common.ErrStaleCache
	}

	if !qrsig.IsWellFormed(qrSignature) {
		a.log.Debug(ctx, "malformed qr payload", "length", len(qrSignature))
		printlnFn("INVALID:", common.InvalidPassMessage)
		return nil
	}

	res := a.verifier.Verify(ctx, qrSignature, eventID)
	switch res.Status {
	case models.VerifyValid:
		if !mark {
			printlnFn(fmt.Sprintf("VALID: %s (%s)", res.Registration.Name, res.Registration.OrbitID))
			return nil
		}
		reg, err := a.attendance.MarkLocal(ctx, qrSignature, operatorID)
		if err != nil {
			return err
		}
		printlnFn(fmt.Sprintf("CHECKED IN: %s (%s)", reg.Name, reg.OrbitID))

	case models.VerifyAlreadyScanned:
		at := "unknown time"
		if res.MarkedAt != nil {
			at = res.MarkedAt.Local().Format(timeLayout)
		}
		printlnFn(fmt.Sprintf("ALREADY SCANNED: %s at %s", res.Registration.Name, at))

	default:
		a.log.Debug(ctx, "invalid pass", "event_id", eventID, "reason", res.Reason)
		printlnFn("INVALID:", res.Message)
	}
	return nil
}
