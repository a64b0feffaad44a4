package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/stockmind/internal/common"
	"github.com/bobmcallan/stockmind/internal/interfaces"
)

// DefaultInterval is how often alerts are checked
const DefaultInterval = 2 * time.Minute

// Scheduler runs alert checks on a fixed interval
type Scheduler struct {
	service  interfaces.AlertService
	cron     *cron.Cron
	interval time.Duration
	timeout  time.Duration
	logger   *common.Logger

	mu      sync.Mutex
	running bool
	entryID cron.EntryID // zero until the check job is registered
}

// NewScheduler creates a scheduler. A non-positive interval uses DefaultInterval.
func NewScheduler(service interfaces.AlertService, interval time.Duration, logger *common.Logger) *Scheduler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		service:  service,
		interval: interval,
		timeout:  interval,
		logger:   logger,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
}

// Schedule returns the cron spec used for the check job
func (s *Scheduler) Schedule() string {
	return fmt.Sprintf("@every %s", s.interval)
}

// Start registers the check job on first use and starts the cron loop.
// A restart after Stop reuses the registered job.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if s.entryID == 0 {
		id, err := s.cron.AddFunc(s.Schedule(), s.RunOnce)
		if err != nil {
			return fmt.Errorf("failed to schedule alert checks: %w", err)
		}
		s.entryID = id
	}

	s.cron.Start()
	s.running = true
	s.logger.Info().Str("schedule", s.Schedule()).Msg("Alert scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running check to finish, or for
// ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info().Msg("Alert scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn().Msg("Alert scheduler stop timed out")
	}
}

// RunOnce performs one check pass
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	results := s.service.CheckAlerts(ctx)

	triggered := 0
	for _, r := range results {
		if r.Triggered {
			triggered++
		}
	}

	s.logger.Info().
		Int("checked", len(results)).
		Int("triggered", triggered).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduled alert check")
}

// cronLogger adapts common.Logger to cron.Logger
type cronLogger struct {
	logger *common.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
