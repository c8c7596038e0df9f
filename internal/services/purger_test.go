package services

import (
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
)

func (s *serviceSuite) TestPurger_RunOnce() {
	a := s.create(models.CategoryCommerce)
	b := s.create(models.CategorySocial)
	s.ingest(a, "amazon")

	_, err := s.lifecycle.Delete(bg, a.ID)
	require.NoError(s.T(), err)
	s.clock.Advance(time.Minute)
	_, err = s.lifecycle.Delete(bg, b.ID)
	require.NoError(s.T(), err)

	purger := NewPurger(s.numberRepo, PurgerConfig{Interval: time.Hour, After: 24 * time.Hour}, discardLogger(), s.clock.Now)

	n, err := purger.RunOnce(bg)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), n, "nothing is old enough yet")

	s.clock.Advance(48 * time.Hour)
	n, err = purger.RunOnce(bg)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), n)

	// a was superseded by b; b stays recoverable
	_, err = s.numberRepo.GetByID(bg, a.ID)
	assert.Error(s.T(), err)
	_, err = s.numberRepo.GetByID(bg, b.ID)
	assert.NoError(s.T(), err)
	assert.Zero(s.T(), s.countRows(&models.Message{}))
}

func (s *serviceSuite) TestPurger_StartStop() {
	purger := NewPurger(s.numberRepo, PurgerConfig{Interval: 10 * time.Millisecond}, discardLogger(), s.clock.Now)

	assert.False(s.T(), purger.IsRunning())
	purger.Start()
	purger.Start()
	assert.True(s.T(), purger.IsRunning())

	time.Sleep(30 * time.Millisecond)
	purger.Stop()
	purger.Stop()
	assert.False(s.T(), purger.IsRunning())
}
