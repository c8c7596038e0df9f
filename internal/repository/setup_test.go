package repository

import (
	"context"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// repoSuite carries an in-memory database shared by the repository suites
type repoSuite struct {
	suite.Suite
	db       *gorm.DB
	physical *models.PhysicalNumber
}

// SetupSuite runs once before all tests
func (s *repoSuite) SetupSuite() {
	// Use in-memory SQLite for testing
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	// A single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(s.T(), err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.PhysicalNumber{}, &models.VirtualNumber{}, &models.Message{}, &models.CategoryCooldown{}, &models.RecoveryCooldown{})
	require.NoError(s.T(), err)

	s.db = db
}

// TearDownSuite runs once after all tests
func (s *repoSuite) TearDownSuite() {
	sqlDB, _ := s.db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SetupTest runs before each test - clean up data and seed a physical number
func (s *repoSuite) SetupTest() {
	s.db.Exec("DELETE FROM messages")
	s.db.Exec("DELETE FROM virtual_numbers")
	s.db.Exec("DELETE FROM category_cooldowns")
	s.db.Exec("DELETE FROM recovery_cooldowns")
	s.db.Exec("DELETE FROM physical_numbers")

	s.physical = &models.PhysicalNumber{Number: "9000000000", OwnerName: "owner", IsActive: true}
	require.NoError(s.T(), s.db.Create(s.physical).Error)
}

func (s *repoSuite) insertNumber(number string, category models.Category, state models.State) *models.VirtualNumber {
	vn := &models.VirtualNumber{
		Number:                   number,
		Category:                 category,
		PhysicalNumberID:         s.physical.ID,
		GeoCode:                  "IN",
		State:                    state,
		MessageForwardingEnabled: true,
		CallForwardingEnabled:    true,
	}
	require.NoError(s.T(), s.db.Create(vn).Error)
	return vn
}

func (s *repoSuite) insertMessage(vn *models.VirtualNumber, sender string, read bool, at time.Time) *models.Message {
	msg := &models.Message{
		VirtualNumberID: vn.ID,
		Category:        vn.Category,
		SenderName:      sender,
		Body:            "hello from " + sender,
		IsRead:          read,
		ReceivedAt:      at,
	}
	require.NoError(s.T(), s.db.Create(msg).Error)
	return msg
}

var bg = context.Background()
