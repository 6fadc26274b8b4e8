package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"zoblogs/internal/providers"
	"zoblogs/internal/registry"
	"zoblogs/internal/structures"
)

const defaultWarmInterval = time.Minute

type SchedulerInterface interface {
	Init()
	Stop()
	WarmUp()
}

// Warmer rebuilds a cached listing and reports how many entries it holds.
type Warmer interface {
	Warm(ctx context.Context) (int, error)
}

type Scheduler struct {
	config   *structures.Config
	logger   providers.Logger
	warmer   Warmer
	registry registry.RegistryInterface
	metrics  providers.MetricsProviderInterface
	cron     *cron.Cron
	opsMu    sync.Mutex
}

func (s *Scheduler) Init() {
	interval := s.config.Scheduler.WarmInterval
	if interval <= 0 {
		interval = defaultWarmInterval
	}

	s.cron = cron.New()
	s.cron.Schedule(cron.Every(interval), cron.FuncJob(s.WarmUp))
	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "Discover warm-up scheduled every %s", interval)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// WarmUp refreshes the registry gauge and the discover cache. Runs do not
// overlap.
func (s *Scheduler) WarmUp() {
	if !s.opsMu.TryLock() {
		s.logger.Debugf(providers.TypeApp, "Warm-up already running, skipping")
		return
	}
	defer s.opsMu.Unlock()

	timeout := s.config.Scheduler.WarmInterval
	if timeout <= 0 {
		timeout = defaultWarmInterval
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	coins, err := s.registry.GetPlatformCoins(ctx)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while reading registry: %s", err)
	} else {
		s.metrics.SetRegistryCoins(len(coins))
	}

	n, err := s.warmer.Warm(ctx)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while warming discover listing: %s", err)
		return
	}
	s.logger.Infof(providers.TypeApp, "Discover listing warmed with %d posts", n)
}

func NewScheduler(config *structures.Config, logger providers.Logger, warmer Warmer, registry registry.RegistryInterface, metrics providers.MetricsProviderInterface) SchedulerInterface {
	return &Scheduler{
		config:   config,
		logger:   logger,
		warmer:   warmer,
		registry: registry,
		metrics:  metrics,
	}
}
