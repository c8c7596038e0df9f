package telecom

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxGenerateAttempts = 64

// SimulatorConfig tunes the simulated carrier
type SimulatorConfig struct {
	Name        string
	FailureRate float64 // Chance for each step to fail (0.0 to 1.0)
	MinLatency  time.Duration
	MaxLatency  time.Duration
	Seed        int64 // zero seeds from the clock
}

// Simulator is an in-process carrier for development and tests. It issues
// numbers from the digit graph, never reissues a number it handed out, and
// injects latency and failures on every step.
type Simulator struct {
	logger *slog.Logger
	cfg    SimulatorConfig

	mu     sync.Mutex
	rng    *rand.Rand
	issued map[string]struct{}
	links  map[string]string
}

// NewSimulator creates a Simulator
func NewSimulator(logger *slog.Logger, cfg SimulatorConfig) *Simulator {
	if cfg.Name == "" {
		cfg.Name = "simulated-carrier"
	}
	if cfg.MaxLatency < cfg.MinLatency {
		cfg.MaxLatency = cfg.MinLatency
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{
		logger: logger.With(slog.String("carrier", cfg.Name)),
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
		issued: make(map[string]struct{}),
		links:  make(map[string]string),
	}
}

// RequestNumber allocates a number of the geo code's length
func (s *Simulator) RequestNumber(ctx context.Context, geoCode string) (string, error) {
	length, ok := NumberLength(geoCode)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownGeoCode, geoCode)
	}
	if err := s.step(ctx, "request_number"); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < maxGenerateAttempts; i++ {
		number := GenerateNumber(s.rng, length)
		if _, taken := s.issued[number]; taken {
			continue
		}
		s.issued[number] = struct{}{}
		s.logger.DebugContext(ctx, "number allocated", slog.String("geo_code", NormalizeGeoCode(geoCode)))
		return number, nil
	}
	return "", fmt.Errorf("%w: number space exhausted for %s", ErrCarrierUnavailable, geoCode)
}

// Link attaches number to physicalNumber
func (s *Simulator) Link(ctx context.Context, number, physicalNumber string) (string, error) {
	if err := s.step(ctx, "link"); err != nil {
		return "", err
	}

	linkID := uuid.NewString()
	s.mu.Lock()
	s.links[linkID] = number
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "number linked", slog.String("link_id", linkID))
	return linkID, nil
}

// AwaitConfirmation confirms a link created by Link
func (s *Simulator) AwaitConfirmation(ctx context.Context, linkID string) error {
	s.mu.Lock()
	_, known := s.links[linkID]
	s.mu.Unlock()
	if !known {
		return fmt.Errorf("%w: unknown link %s", ErrLinkRejected, linkID)
	}
	return s.step(ctx, "confirm")
}

// Release forgets a number and its links so the number may be issued again
func (s *Simulator) Release(number string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.issued, number)
	for linkID, linked := range s.links {
		if linked == number {
			delete(s.links, linkID)
		}
	}
}

// ReleaseLink forgets a single link
func (s *Simulator) ReleaseLink(linkID string) {
	s.mu.Lock()
	delete(s.links, linkID)
	s.mu.Unlock()
}

// step sleeps for a random latency and rolls for a simulated failure
func (s *Simulator) step(ctx context.Context, name string) error {
	s.mu.Lock()
	latency := s.cfg.MinLatency
	if spread := s.cfg.MaxLatency - s.cfg.MinLatency; spread > 0 {
		latency += time.Duration(s.rng.Int63n(int64(spread) + 1))
	}
	failed := s.rng.Float64() < s.cfg.FailureRate
	s.mu.Unlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", name, ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	if failed {
		s.logger.WarnContext(ctx, "simulated carrier failure", slog.String("step", name))
		return fmt.Errorf("%s: %w", name, ErrCarrierUnavailable)
	}
	return nil
}
