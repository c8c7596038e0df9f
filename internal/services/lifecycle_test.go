package services

import (
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/welldanyogia/webrana-proxynum-backend/internal/errors"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/repository"
)

func (s *serviceSuite) TestDeactivate_TogglesBackAndForth() {
	vn := s.create(models.CategoryCommerce)

	updated, err := s.lifecycle.Deactivate(bg, vn.ID, false)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StateInactive, updated.State)
	assert.True(s.T(), updated.CallForwardingEnabled)

	updated, err = s.lifecycle.Deactivate(bg, vn.ID, false)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StateActive, updated.State)

	stored, err := s.numberRepo.GetByID(bg, vn.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StateActive, stored.State)
}

func (s *serviceSuite) TestDeactivate_SuppressesAndRestoresCalls() {
	vn := s.create(models.CategorySocial)

	updated, err := s.lifecycle.Deactivate(bg, vn.ID, true)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StateInactive, updated.State)
	assert.False(s.T(), updated.CallForwardingEnabled)
	assert.True(s.T(), updated.CallsSuppressed)

	updated, err = s.lifecycle.Deactivate(bg, vn.ID, false)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StateActive, updated.State)
	assert.True(s.T(), updated.CallForwardingEnabled)
	assert.False(s.T(), updated.CallsSuppressed)
}

func (s *serviceSuite) TestDeactivate_CallsAlreadyOffStayOff() {
	vn := s.create(models.CategorySocial)
	_, err := s.lifecycle.ToggleCallForwarding(bg, vn.ID)
	require.NoError(s.T(), err)

	updated, err := s.lifecycle.Deactivate(bg, vn.ID, true)
	require.NoError(s.T(), err)
	assert.False(s.T(), updated.CallsSuppressed)

	updated, err = s.lifecycle.Deactivate(bg, vn.ID, true)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StateActive, updated.State)
	assert.False(s.T(), updated.CallForwardingEnabled)
}

func (s *serviceSuite) TestDeactivate_Errors() {
	_, err := s.lifecycle.Deactivate(bg, 4242, false)
	assert.True(s.T(), apperrors.IsNotFound(err))

	vn := s.create(models.CategoryPersonal)
	_, err = s.lifecycle.Delete(bg, vn.ID)
	require.NoError(s.T(), err)

	_, err = s.lifecycle.Deactivate(bg, vn.ID, false)
	assert.True(s.T(), apperrors.IsConflict(err))
}

func (s *serviceSuite) TestToggleMessageForwarding() {
	vn := s.create(models.CategoryCommerce)

	updated, err := s.lifecycle.ToggleMessageForwarding(bg, vn.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), updated.MessageForwardingEnabled)
	assert.Equal(s.T(), models.StateActive, updated.State)

	updated, err = s.lifecycle.ToggleMessageForwarding(bg, vn.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), updated.MessageForwardingEnabled)
}

func (s *serviceSuite) TestToggleCallForwarding_ClearsSuppression() {
	vn := s.create(models.CategoryCommerce)
	_, err := s.lifecycle.Deactivate(bg, vn.ID, true)
	require.NoError(s.T(), err)

	updated, err := s.lifecycle.ToggleCallForwarding(bg, vn.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), updated.CallForwardingEnabled)
	assert.False(s.T(), updated.CallsSuppressed)
	assert.Equal(s.T(), models.StateInactive, updated.State)
}

func (s *serviceSuite) TestDelete() {
	vn := s.create(models.CategoryCommerce)
	s.clock.Advance(10 * time.Minute)

	deleted, err := s.lifecycle.Delete(bg, vn.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StateDeleted, deleted.State)
	require.NotNil(s.T(), deleted.DeletedAt)
	assert.True(s.T(), deleted.DeletedAt.Equal(s.clock.Now()))

	cd, err := s.cooldownRepo.GetCategoryCooldown(bg, models.CategoryCommerce)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), cd.LastDeletedAt)
	assert.True(s.T(), cd.LastDeletedAt.Equal(s.clock.Now()))

	live, err := s.numberRepo.CountLive(bg, s.physical.ID)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), live)

	// still queryable
	got, err := s.lifecycle.Get(bg, vn.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StateDeleted, got.State)

	_, err = s.lifecycle.Delete(bg, vn.ID)
	assert.True(s.T(), apperrors.IsConflict(err))

	_, err = s.lifecycle.Delete(bg, 9999)
	assert.True(s.T(), apperrors.IsNotFound(err))
}

func (s *serviceSuite) TestDelete_InactiveNumber() {
	vn := s.create(models.CategorySocial)
	_, err := s.lifecycle.Deactivate(bg, vn.ID, false)
	require.NoError(s.T(), err)

	deleted, err := s.lifecycle.Delete(bg, vn.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StateDeleted, deleted.State)
}

func (s *serviceSuite) TestList() {
	commerce := s.create(models.CategoryCommerce)
	social := s.create(models.CategorySocial)
	s.ingest(commerce, "amazon")
	s.ingest(commerce, "flipkart")

	_, err := s.lifecycle.Delete(bg, social.ID)
	require.NoError(s.T(), err)

	live, err := s.lifecycle.List(bg, s.physical.ID, repository.VirtualNumberFilter{})
	require.NoError(s.T(), err)
	require.Len(s.T(), live, 1)
	assert.Equal(s.T(), commerce.ID, live[0].ID)
	assert.Equal(s.T(), int64(2), live[0].UnreadCount)

	all, err := s.lifecycle.List(bg, s.physical.ID, repository.VirtualNumberFilter{IncludeDeleted: true})
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 2)

	filtered, err := s.lifecycle.List(bg, s.physical.ID, repository.VirtualNumberFilter{Category: models.CategoryPersonal})
	require.NoError(s.T(), err)
	assert.NotNil(s.T(), filtered)
	assert.Empty(s.T(), filtered)

	_, err = s.lifecycle.List(bg, s.physical.ID, repository.VirtualNumberFilter{Category: "travel"})
	assert.True(s.T(), apperrors.IsValidation(err))
}
