package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/lock"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/models"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var bg = context.Background()

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock is a settable clock
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// fakeGateway is a scripted carrier
type fakeGateway struct {
	mu         sync.Mutex
	seq        int
	scripted   []string
	requestErr error
	linkErr    error
	confirmErr error
	block      bool
	requests   int
	links      int
	released   []string
	unlinked   []string
	onConfirm  func()
}

func (g *fakeGateway) RequestNumber(ctx context.Context, geoCode string) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests++
	if g.requestErr != nil {
		return "", g.requestErr
	}
	if len(g.scripted) > 0 {
		n := g.scripted[0]
		g.scripted = g.scripted[1:]
		return n, nil
	}
	g.seq++
	return fmt.Sprintf("91000000%02d", g.seq), nil
}

func (g *fakeGateway) Link(ctx context.Context, number, physicalNumber string) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.links++
	if g.linkErr != nil {
		return "", g.linkErr
	}
	return fmt.Sprintf("link-%d", g.links), nil
}

func (g *fakeGateway) AwaitConfirmation(ctx context.Context, linkID string) error {
	if err := g.wait(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	hook, err := g.onConfirm, g.confirmErr
	g.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

func (g *fakeGateway) Release(number string) {
	g.mu.Lock()
	g.released = append(g.released, number)
	g.mu.Unlock()
}

func (g *fakeGateway) ReleaseLink(linkID string) {
	g.mu.Lock()
	g.unlinked = append(g.unlinked, linkID)
	g.mu.Unlock()
}

func (g *fakeGateway) wait(ctx context.Context) error {
	g.mu.Lock()
	block := g.block
	g.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (g *fakeGateway) releasedNumbers() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.released...)
}

func (g *fakeGateway) releasedLinks() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.unlinked...)
}

// serviceSuite wires every service over an in-memory database and a fake clock
type serviceSuite struct {
	suite.Suite
	db       *gorm.DB
	physical *models.PhysicalNumber

	clock   *fakeClock
	gateway *fakeGateway

	physicalRepo repository.PhysicalNumberRepository
	numberRepo   repository.VirtualNumberRepository
	messageRepo  repository.MessageRepository
	cooldownRepo repository.CooldownRepository

	cooldowns     CooldownService
	provisioning  ProvisioningService
	lifecycle     LifecycleService
	recovery      RecoveryService
	router        MessageRouter
	notifications NotificationService
}

func (s *serviceSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	sqlDB, err := db.DB()
	require.NoError(s.T(), err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.PhysicalNumber{}, &models.VirtualNumber{}, &models.Message{}, &models.CategoryCooldown{}, &models.RecoveryCooldown{})
	require.NoError(s.T(), err)

	s.db = db
}

func (s *serviceSuite) TearDownSuite() {
	sqlDB, _ := s.db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

func (s *serviceSuite) SetupTest() {
	s.db.Exec("DELETE FROM messages")
	s.db.Exec("DELETE FROM virtual_numbers")
	s.db.Exec("DELETE FROM category_cooldowns")
	s.db.Exec("DELETE FROM recovery_cooldowns")
	s.db.Exec("DELETE FROM physical_numbers")

	s.physical = &models.PhysicalNumber{Number: "9000000000", OwnerName: "owner", IsActive: true}
	require.NoError(s.T(), s.db.Create(s.physical).Error)

	s.clock = newFakeClock()
	s.gateway = &fakeGateway{}

	s.physicalRepo = repository.NewPhysicalNumberRepository(s.db)
	s.numberRepo = repository.NewVirtualNumberRepository(s.db)
	s.messageRepo = repository.NewMessageRepository(s.db)
	s.cooldownRepo = repository.NewCooldownRepository(s.db)

	s.build(RouterConfig{}, ProvisioningConfig{Timeout: time.Second})
}

// build rewires the services with the given configuration
func (s *serviceSuite) build(routerCfg RouterConfig, provCfg ProvisioningConfig) {
	log := discardLogger()
	locker := lock.NewKeyedMutex()

	s.cooldowns = NewCooldownService(s.cooldownRepo, CooldownConfig{
		CreateCooldown:  5 * time.Minute,
		RecoverCooldown: 5 * time.Minute,
	}, s.clock.Now)
	s.provisioning = NewProvisioningService(s.physicalRepo, s.numberRepo, s.cooldowns, s.gateway, locker, provCfg, log, s.clock.Now)
	s.lifecycle = NewLifecycleService(s.numberRepo, locker, log, s.clock.Now)
	s.recovery = NewRecoveryService(s.physicalRepo, s.numberRepo, s.cooldowns, s.gateway, locker, provCfg, log, s.clock.Now)
	s.router = NewMessageRouter(s.numberRepo, s.messageRepo, locker, routerCfg, log, s.clock.Now)
	s.notifications = NewNotificationService(s.messageRepo)
}

func (s *serviceSuite) create(category models.Category) *models.VirtualNumber {
	vn, err := s.provisioning.Create(bg, s.physical.ID, category, "IN")
	require.NoError(s.T(), err)
	return vn
}

func (s *serviceSuite) ingest(vn *models.VirtualNumber, sender string) *models.Message {
	msg, err := s.router.Ingest(bg, vn.Number, sender, "your code is 1234")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), msg)
	return msg
}

func (s *serviceSuite) countRows(model any) int64 {
	var n int64
	require.NoError(s.T(), s.db.Model(model).Count(&n).Error)
	return n
}
