// Package jobs owns the time-based triggers. The only scheduled job is the
// daily F1 data sync; failures surface to the scheduler's logs and metrics and
// the next run proceeds regardless.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps gocron with UTC scheduling and named jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a scheduler running in UTC.
func NewScheduler() (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{scheduler: scheduler}, nil
}

// RegisterDaily schedules fn once daily at hourUTC:00:00.
func (s *Scheduler) RegisterDaily(name string, hourUTC int, fn func(ctx context.Context) error) error {
	_, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hourUTC), 0, 0))),
		gocron.NewTask(func() {
			runJob(name, fn)
		}),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", name, err)
	}

	log.Printf("⏰ [SCHEDULER] Registered job '%s' daily at %02d:00 UTC", name, hourUTC)
	return nil
}

func runJob(name string, fn func(ctx context.Context) error) {
	log.Printf("▶️  [SCHEDULER] Running job: %s", name)
	started := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := fn(ctx); err != nil {
		log.Printf("❌ [SCHEDULER] Job '%s' failed: %v", name, err)
		return
	}

	log.Printf("✅ [SCHEDULER] Job '%s' completed in %v", name, time.Since(started))
}

// Start begins running registered jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
	log.Println("🚀 [SCHEDULER] Job scheduler started")
}

// Stop gracefully shuts the scheduler down.
func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		log.Printf("⚠️  [SCHEDULER] Shutdown error: %v", err)
		return
	}
	log.Println("🛑 [SCHEDULER] Job scheduler stopped")
}
