package services

import (
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/welldanyogia/webrana-proxynum-backend/internal/errors"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/telecom"
)

func (s *serviceSuite) TestRecover_NothingDeleted() {
	_, err := s.recovery.RecoverLastDeleted(bg, s.physical.ID)
	assert.True(s.T(), apperrors.IsNotFound(err))
}

func (s *serviceSuite) TestRecover_RestoresNumberAndMessages() {
	vn := s.create(models.CategoryCommerce)
	s.ingest(vn, "amazon")
	s.ingest(vn, "ebay")

	_, err := s.lifecycle.Delete(bg, vn.ID)
	require.NoError(s.T(), err)

	s.clock.Advance(time.Minute)
	result, err := s.recovery.RecoverLastDeleted(bg, s.physical.ID)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), vn.ID, result.VirtualNumber.ID)
	assert.Equal(s.T(), vn.Number, result.VirtualNumber.Number)
	assert.Equal(s.T(), models.StateActive, result.VirtualNumber.State)
	assert.Nil(s.T(), result.VirtualNumber.DeletedAt)
	assert.Equal(s.T(), int64(2), result.MessagesRestored)

	cd, err := s.cooldownRepo.GetRecoveryCooldown(bg)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), cd.LastRecoveredAt)
	assert.True(s.T(), cd.LastRecoveredAt.Equal(s.clock.Now()))

	// restored numbers accept messages again
	s.ingest(vn, "walmart")
}

func (s *serviceSuite) TestRecover_TwiceWithinCooldown() {
	a := s.create(models.CategoryCommerce)
	b := s.create(models.CategorySocial)

	_, err := s.lifecycle.Delete(bg, a.ID)
	require.NoError(s.T(), err)
	_, err = s.recovery.RecoverLastDeleted(bg, s.physical.ID)
	require.NoError(s.T(), err)

	s.clock.Advance(time.Minute)
	_, err = s.lifecycle.Delete(bg, b.ID)
	require.NoError(s.T(), err)

	s.clock.Advance(time.Minute)
	_, err = s.recovery.RecoverLastDeleted(bg, s.physical.ID)
	cdErr := apperrors.GetCooldownError(err)
	require.NotNil(s.T(), cdErr)
	assert.Equal(s.T(), apperrors.OperationRecover, cdErr.Operation)
	assert.Equal(s.T(), 3*time.Minute, cdErr.Remaining)

	s.clock.Advance(3 * time.Minute)
	result, err := s.recovery.RecoverLastDeleted(bg, s.physical.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), b.ID, result.VirtualNumber.ID)
}

func (s *serviceSuite) TestRecover_OnlyMostRecentDeletion() {
	a := s.create(models.CategoryCommerce)
	b := s.create(models.CategorySocial)

	_, err := s.lifecycle.Delete(bg, a.ID)
	require.NoError(s.T(), err)
	s.clock.Advance(time.Second)
	_, err = s.lifecycle.Delete(bg, b.ID)
	require.NoError(s.T(), err)

	result, err := s.recovery.RecoverLastDeleted(bg, s.physical.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), b.ID, result.VirtualNumber.ID)

	// the earlier deletion is never re-exposed
	s.clock.Advance(10 * time.Minute)
	_, err = s.recovery.RecoverLastDeleted(bg, s.physical.ID)
	assert.True(s.T(), apperrors.IsNotFound(err))

	stored, err := s.numberRepo.GetByID(bg, a.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StateDeleted, stored.State)
}

func (s *serviceSuite) TestRecover_SlotTakenByReplacement() {
	vn := s.create(models.CategoryCommerce)
	_, err := s.lifecycle.Delete(bg, vn.ID)
	require.NoError(s.T(), err)

	s.clock.Advance(6 * time.Minute)
	s.create(models.CategoryCommerce)

	_, err = s.recovery.RecoverLastDeleted(bg, s.physical.ID)
	assert.True(s.T(), apperrors.IsConflict(err))

	// a refused recovery does not arm the cooldown
	cd, err := s.cooldownRepo.GetRecoveryCooldown(bg)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), cd.LastRecoveredAt)
}

func (s *serviceSuite) TestRecover_GatewayFailureKeepsNumberDeleted() {
	vn := s.create(models.CategoryPersonal)
	_, err := s.lifecycle.Delete(bg, vn.ID)
	require.NoError(s.T(), err)

	s.gateway.linkErr = telecom.ErrLinkRejected
	_, err = s.recovery.RecoverLastDeleted(bg, s.physical.ID)
	require.Error(s.T(), err)
	assert.True(s.T(), apperrors.IsProvisioning(err))
	assert.ErrorIs(s.T(), err, telecom.ErrLinkRejected)

	stored, err := s.numberRepo.GetByID(bg, vn.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StateDeleted, stored.State)

	// still recoverable once the carrier is back
	s.gateway.linkErr = nil
	result, err := s.recovery.RecoverLastDeleted(bg, s.physical.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), vn.ID, result.VirtualNumber.ID)
}

func (s *serviceSuite) TestRecover_FailedRestoreReleasesLink() {
	vn := s.create(models.CategoryCommerce)
	_, err := s.lifecycle.Delete(bg, vn.ID)
	require.NoError(s.T(), err)

	// a replacement lands in the slot while the carrier confirms the re-link
	s.gateway.onConfirm = func() {
		rival := &models.VirtualNumber{
			PhysicalNumberID:         s.physical.ID,
			Number:                   "9100000099",
			Category:                 models.CategoryCommerce,
			GeoCode:                  "IN",
			State:                    models.StateActive,
			MessageForwardingEnabled: true,
			CallForwardingEnabled:    true,
		}
		require.NoError(s.T(), s.db.Create(rival).Error)
	}

	_, err = s.recovery.RecoverLastDeleted(bg, s.physical.ID)
	assert.True(s.T(), apperrors.IsConflict(err))

	assert.Len(s.T(), s.gateway.releasedLinks(), 1)
	// the deleted row still owns the number
	assert.Empty(s.T(), s.gateway.releasedNumbers())

	stored, err := s.numberRepo.GetByID(bg, vn.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StateDeleted, stored.State)
}

func (s *serviceSuite) TestRecover_Timeout() {
	vn := s.create(models.CategoryPersonal)
	_, err := s.lifecycle.Delete(bg, vn.ID)
	require.NoError(s.T(), err)

	s.gateway.block = true
	s.build(RouterConfig{}, ProvisioningConfig{Timeout: 20 * time.Millisecond})

	_, err = s.recovery.RecoverLastDeleted(bg, s.physical.ID)
	assert.True(s.T(), apperrors.IsProvisioning(err))

	stored, err := s.numberRepo.GetByID(bg, vn.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StateDeleted, stored.State)
}
