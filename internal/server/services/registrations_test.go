package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/qrsig"
	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
	"github.com/dmitrijs2005/orbitcheck/internal/server/repositories/registrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnn() models.NewRegistration {
	return models.NewRegistration{
		OrbitID: "ORB-1", GovIDLast4: "1234", FirstName: "Ann",
		Name: "Ann Lee", Email: "ann@example.com", College: "CMU",
	}
}

func TestRegistrationService_CreateEvent(t *testing.T) {
	ctx := context.Background()
	rm := newFakeRepoManager()
	s := NewRegistrationService(nil, rm, discard())

	e, err := s.CreateEvent(ctx, " E1 ", "Orbit Launch")
	require.NoError(t, err)
	assert.Equal(t, "E1", e.ID)

	got, err := s.GetEvent(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, "Orbit Launch", got.Name)

	_, err = s.CreateEvent(ctx, "E1", "again")
	assert.ErrorIs(t, err, common.ErrConflict)

	_, err = s.CreateEvent(ctx, "", "x")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = s.CreateEvent(ctx, "E|2", "x")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = s.GetEvent(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRegistrationService_Register(t *testing.T) {
	ctx := context.Background()
	rm := newFakeRepoManager()
	rm.seedEvent("E1", "Orbit Launch")
	s := NewRegistrationService(nil, rm, discard())

	reg, err := s.Register(ctx, "E1", newAnn())
	require.NoError(t, err)

	assert.NotEmpty(t, reg.ID)
	assert.Equal(t, "E1", reg.EventID)
	assert.Equal(t, "ORB-1", reg.OrbitID)
	assert.True(t, qrsig.IsWellFormed(reg.QRSignature))
	assert.False(t, reg.AttendanceStatus)

	again, err := s.Register(ctx, "E1", models.NewRegistration{
		OrbitID: "ORB-2", GovIDLast4: "1234", FirstName: "Ann", Name: "Ann Lee", Email: "a2@example.com",
	})
	require.NoError(t, err)
	assert.NotEqual(t, reg.QRSignature, again.QRSignature)
}

func TestRegistrationService_RegisterErrors(t *testing.T) {
	ctx := context.Background()
	rm := newFakeRepoManager()
	rm.seedEvent("E1", "Orbit Launch")
	s := NewRegistrationService(nil, rm, discard())

	_, err := s.Register(ctx, "nope", newAnn())
	assert.ErrorIs(t, err, common.ErrNotFound)

	bad := newAnn()
	bad.GovIDLast4 = "12345"
	_, err = s.Register(ctx, "E1", bad)
	assert.ErrorIs(t, err, common.ErrValidation)

	rm.regs.createErrs = []error{common.ErrConflict}
	_, err = s.Register(ctx, "E1", newAnn())
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Empty(t, rm.regs.rows)
}

func TestRegistrationService_RetriesSignatureCollisionOnce(t *testing.T) {
	ctx := context.Background()
	rm := newFakeRepoManager()
	rm.seedEvent("E1", "Orbit Launch")
	s := NewRegistrationService(nil, rm, discard())

	calls := 0
	orig := generateSignature
	t.Cleanup(func() { generateSignature = orig })
	generateSignature = func(f qrsig.Fields) (string, error) {
		calls++
		return orig(f)
	}

	rm.regs.createErrs = []error{registrations.ErrSignatureCollision, nil}
	reg, err := s.Register(ctx, "E1", newAnn())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, rm.regs.rows, 1)
	assert.Equal(t, reg.QRSignature, rm.regs.rows[0].QRSignature)

	calls = 0
	rm.regs.createErrs = []error{registrations.ErrSignatureCollision, registrations.ErrSignatureCollision}
	_, err = s.Register(ctx, "E1", newAnn())
	assert.ErrorIs(t, err, registrations.ErrSignatureCollision)
	assert.Equal(t, 2, calls, "retried exactly once")
}

func TestRegistrationService_GeneratorFailure(t *testing.T) {
	rm := newFakeRepoManager()
	rm.seedEvent("E1", "Orbit Launch")
	s := NewRegistrationService(nil, rm, discard())

	orig := generateSignature
	t.Cleanup(func() { generateSignature = orig })
	generateSignature = func(qrsig.Fields) (string, error) { return "", errors.New("entropy source failed") }

	_, err := s.Register(context.Background(), "E1", newAnn())
	assert.ErrorContains(t, err, "entropy source failed")
}
