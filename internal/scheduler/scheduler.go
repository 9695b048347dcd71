package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/opencitizen/notifstore/internal/clock"
	"github.com/opencitizen/notifstore/internal/config"
	eventdomain "github.com/opencitizen/notifstore/internal/event/domain"
	"github.com/opencitizen/notifstore/internal/observability"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

// Config controls the purge sweep.
type Config struct {
	RunInterval   time.Duration
	RetentionDays int
}

func DefaultConfig() Config {
	return Config{
		RunInterval:   24 * time.Hour,
		RetentionDays: 60,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = defaults.RetentionDays
	}
	return c
}

// ProvideConfig builds the sweep settings from the application config.
func ProvideConfig(cfg config.Config) Config {
	interval, err := time.ParseDuration(cfg.PurgeInterval)
	if err != nil {
		interval = 0
	}
	return Config{
		RunInterval:   interval,
		RetentionDays: cfg.EventRetentionDays,
	}.withDefaults()
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Events  eventdomain.Service
	Metrics *observability.Metrics `optional:"true"`
	Config  Config                 `optional:"true"`
}

// Scheduler runs the periodic audit event purge. Fire-and-forget: a failed
// sweep is logged and retried on the next tick.
type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	clock   clock.Clock
	events  eventdomain.Service
	metrics *observability.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.Events == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:     p.Log.Named("scheduler"),
		cfg:     p.Config.withDefaults(),
		clock:   p.Clock,
		events:  p.Events,
		metrics: p.Metrics,
	}, nil
}

// RunOnce executes one purge sweep.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := s.clock.Now()
	deleted, err := s.events.PurgeOlderThan(ctx, s.cfg.RetentionDays)
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordPurge(ctx, deleted)
	}
	s.log.Info("event purge sweep",
		zap.Int64("deleted", deleted),
		zap.Int("retention_days", s.cfg.RetentionDays),
		zap.Duration("took", s.clock.Now().Sub(start)),
	)
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("event purge failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
