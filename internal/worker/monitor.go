package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/doomlife/settlement-service/internal/config"
	"github.com/doomlife/settlement-service/internal/domain"
)

// WindowMonitor periodically sweeps for events whose dispute window has
// closed cleanly and feeds them to the resolution topic. The deterministic
// job id makes a sweep that overlaps the previous one harmless: the handler's
// status guard turns the duplicate into a no-op.
type WindowMonitor struct {
	eventRepo domain.EventRepository
	queue     domain.JobQueue
	cfg       config.Settlement
	logger    *slog.Logger

	now func() time.Time
}

func NewWindowMonitor(eventRepo domain.EventRepository, jobQueue domain.JobQueue, cfg config.Settlement, logger *slog.Logger) *WindowMonitor {
	return &WindowMonitor{
		eventRepo: eventRepo,
		queue:     jobQueue,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (m *WindowMonitor) Run(ctx context.Context) error {
	interval := m.cfg.WindowSweepInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := m.Sweep(); err != nil {
				m.logger.Error("window sweep failed", "error", err.Error())
			}
		}
	}
}

// Sweep enqueues a resolution job for every finalizable event.
func (m *WindowMonitor) Sweep() error {
	cutoff := m.now().Add(-m.cfg.DisputeWindow)
	events, err := m.eventRepo.FindFinalizable(cutoff)
	if err != nil {
		return fmt.Errorf("find finalizable events: %w", err)
	}

	for _, event := range events {
		job := domain.ResolutionJob{EventID: event.ID}
		err := m.queue.Enqueue(domain.JobResolution, job, &domain.EnqueueOptions{
			JobID: fmt.Sprintf("%s-resolution", event.ID),
		})
		if err != nil {
			m.logger.Error("failed to enqueue resolution job",
				"event_id", event.ID, "error", err.Error())
			continue
		}
		m.logger.Info("dispute window closed, resolution queued", "event_id", event.ID)
	}

	return nil
}
