// Package scheduler implements background maintenance tasks
package scheduler

import (
	"context"
	"log"
	"time"

	"movierec.app/config"
)

// HealthChecker probes the scoring service and records the result
type HealthChecker interface {
	CheckHealth() map[string]interface{}
}

// ExpirySweeper removes expired entries from an in-process cache
type ExpirySweeper interface {
	SweepExpired(ctx context.Context) int
}

// Scheduler manages periodic tasks for the application
type Scheduler struct {
	config  *config.Config
	health  HealthChecker
	sweeper ExpirySweeper
	done    chan struct{}
}

// NewScheduler creates and configures a new task scheduler.
// sweeper may be nil when the cache backend evicts on its own (redis).
func NewScheduler(config *config.Config, health HealthChecker, sweeper ExpirySweeper) *Scheduler {
	return &Scheduler{
		config:  config,
		health:  health,
		sweeper: sweeper,
		done:    make(chan struct{}),
	}
}

// Start begins the scheduler's operations
func (s *Scheduler) Start() {
	go s.scheduleInterval(s.config.Monitor.HealthInterval(), s.probeHealth)

	if s.sweeper != nil {
		go s.scheduleInterval(s.config.Monitor.SweepInterval(), s.sweepCache)
	}
}

// Stop terminates all periodic tasks
func (s *Scheduler) Stop() {
	close(s.done)
}

func (s *Scheduler) scheduleInterval(interval time.Duration, job func()) {
	job()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			job()
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) probeHealth() {
	status := s.health.CheckHealth()
	if status["status"] != "healthy" {
		log.Printf("Scoring service health check failed: %v\n", status)
	}
}

func (s *Scheduler) sweepCache() {
	removed := s.sweeper.SweepExpired(context.Background())
	if removed > 0 {
		log.Printf("Removed %d expired cache entries\n", removed)
	}
}
