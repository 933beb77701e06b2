// Package scheduler runs recurring jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// MaintenanceEnqueuer queues one round of housekeeping tasks.
type MaintenanceEnqueuer interface {
	EnqueueMaintenance(ctx context.Context) ([]string, error)
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// MaintenanceScheduler enqueues housekeeping on a cron schedule. The work
// itself runs on the task queue.
type MaintenanceScheduler struct {
	enqueuer MaintenanceEnqueuer
	schedule string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	ctx       context.Context
}

func NewMaintenanceScheduler(enqueuer MaintenanceEnqueuer, schedule string) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		enqueuer: enqueuer,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start schedules the job. It stops on its own when ctx is cancelled.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return err
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.RunNow)
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance: %w", err)
	}
	s.entryID = entryID
	s.ctx = ctx

	s.cron.Start()
	s.isRunning = true

	log.Printf("[scheduler] maintenance scheduled '%s', next run %v", s.schedule, s.cron.Entry(entryID).Next)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job and stops the scheduler.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	entryID := s.entryID
	s.mu.Unlock()

	// A running job takes the read lock, so wait without holding it.
	<-s.cron.Stop().Done()
	s.cron.Remove(entryID)

	log.Printf("[scheduler] maintenance stopped")
}

// RunNow enqueues one round of maintenance immediately.
func (s *MaintenanceScheduler) RunNow() {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}

	ids, err := s.enqueuer.EnqueueMaintenance(ctx)
	if err != nil {
		log.Printf("[scheduler] failed to enqueue maintenance: %v", err)
		return
	}
	log.Printf("[scheduler] enqueued %d maintenance tasks", len(ids))
}

func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when maintenance runs next, or nil when stopped.
func (s *MaintenanceScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}
