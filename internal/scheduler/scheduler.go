// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// PurgeOTPsJobName names the job deleting expired one-time passwords.
const PurgeOTPsJobName = "purge-expired-otps"

// DefaultPurgeInterval is how often expired one-time passwords are removed.
const DefaultPurgeInterval = time.Minute

// OTPPurger deletes one-time passwords past their expiry.
type OTPPurger interface {
	PurgeExpiredOTPs(ctx context.Context) (int64, error)
}

// Manager owns the gocron scheduler and its jobs.
type Manager struct {
	scheduler gocron.Scheduler
	logger    *zap.SugaredLogger
}

// New creates a manager with no jobs.
func New(logger *zap.SugaredLogger) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Manager{scheduler: s, logger: logger}, nil
}

// RegisterOTPPurge schedules the purge every interval. A run still in progress
// when the next one is due delays it instead of overlapping.
func (m *Manager) RegisterOTPPurge(purger OTPPurger, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(m.purgeOTPs, purger, interval),
		gocron.WithName(PurgeOTPsJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		m.logger.Errorw("failed to register job", "job", PurgeOTPsJobName, "error", err)
		return err
	}
	return nil
}

func (m *Manager) purgeOTPs(purger OTPPurger, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	deleted, err := purger.PurgeExpiredOTPs(ctx)
	if err != nil {
		m.logger.Errorw("job failed", "job", PurgeOTPsJobName, "error", err)
		return
	}
	if deleted > 0 {
		m.logger.Infow("expired one-time passwords purged", "job", PurgeOTPsJobName, "deleted", deleted)
	}
}

// Jobs returns the names of the registered jobs.
func (m *Manager) Jobs() []string {
	jobs := m.scheduler.Jobs()
	names := make([]string, 0, len(jobs))
	for _, job := range jobs {
		names = append(names, job.Name())
	}
	return names
}

// Start begins running the registered jobs.
func (m *Manager) Start() {
	m.scheduler.Start()
	m.logger.Infow("scheduler started", "jobs", m.Jobs())
}

// Stop waits for running jobs and stops the scheduler.
func (m *Manager) Stop() error {
	if err := m.scheduler.Shutdown(); err != nil {
		m.logger.Errorw("failed to shutdown scheduler", "error", err)
		return err
	}
	m.logger.Info("scheduler stopped")
	return nil
}
