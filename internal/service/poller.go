package service

import (
	"context"
	"log"
	"sync"
	"time"

	"surveyhub/config"
	"surveyhub/internal/repository"
	"surveyhub/pkg/provider"
)

// Poller periodically aggregates surveys for every active user with a
// connected provider account and announces listings not seen before. Runs for
// the lifetime of the process; a cycle error shortens the wait to the error
// backoff instead of terminating the loop.
type Poller struct {
	cfg        config.PollerConfig
	userRepo   *repository.UserRepository
	aggregator *AggregatorService
	notifier   *NotificationService

	mu   sync.Mutex
	seen map[uint]map[string]struct{} // userID -> announced survey ids, process lifetime
}

func NewPoller(cfg config.PollerConfig, userRepo *repository.UserRepository, aggregator *AggregatorService, notifier *NotificationService) *Poller {
	return &Poller{
		cfg:        cfg,
		userRepo:   userRepo,
		aggregator: aggregator,
		notifier:   notifier,
		seen:       make(map[uint]map[string]struct{}),
	}
}

// Run blocks until ctx is cancelled. Shutdown is observed between cycles.
func (p *Poller) Run(ctx context.Context) {
	log.Printf("[poller] started, interval=%s error_backoff=%s", p.cfg.Interval, p.cfg.ErrorBackoff)
	for {
		wait := p.cfg.Interval
		if err := p.cycle(ctx); err != nil {
			log.Printf("[poller] cycle failed: %v", err)
			wait = p.cfg.ErrorBackoff
		}
		select {
		case <-ctx.Done():
			log.Printf("[poller] stopped")
			return
		case <-time.After(wait):
		}
	}
}

func (p *Poller) cycle(ctx context.Context) error {
	users, err := p.userRepo.ListActiveWithConnections()
	if err != nil {
		return err
	}
	log.Printf("[poller] updating surveys for %d users", len(users))
	for _, u := range users {
		surveys, err := p.aggregator.AvailableSurveys(ctx, u.ID)
		if err != nil {
			log.Printf("[poller] aggregation failed for user %d: %v", u.ID, err)
			continue
		}
		fresh := p.markSeen(u.ID, surveys)
		if len(fresh) > 0 {
			p.notifier.NotifyNewSurveys(u.ID, fresh)
		}
	}
	return nil
}

// markSeen filters surveys down to ones not announced to the user before and
// records them. The seen-set is in-memory only; a restart may repeat one
// announcement.
func (p *Poller) markSeen(userID uint, surveys []provider.ExternalSurvey) []provider.ExternalSurvey {
	p.mu.Lock()
	defer p.mu.Unlock()
	known := p.seen[userID]
	if known == nil {
		known = make(map[string]struct{})
		p.seen[userID] = known
	}
	var fresh []provider.ExternalSurvey
	for _, s := range surveys {
		if _, ok := known[s.ID]; ok {
			continue
		}
		known[s.ID] = struct{}{}
		fresh = append(fresh, s)
	}
	return fresh
}
