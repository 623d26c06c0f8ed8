// File: /jobs/booking_expiry_job.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"carrental-api/utils"
	"github.com/robfig/cron/v3"
)

const expiryRunTimeout = 2 * time.Minute

// StaleBookingExpirer cancels pending bookings whose pickup day has passed.
type StaleBookingExpirer interface {
	ExpireStalePending(ctx context.Context, now time.Time) (int64, error)
}

// BookingExpiryJob periodically cancels booking requests the owner never answered.
type BookingExpiryJob struct {
	expirer  StaleBookingExpirer
	schedule string
	cron     *cron.Cron
	now      func() time.Time
}

func NewBookingExpiryJob(expirer StaleBookingExpirer, schedule string) *BookingExpiryJob {
	return &BookingExpiryJob{
		expirer:  expirer,
		schedule: schedule,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		now:      time.Now,
	}
}

// Start runs the job once and then on schedule.
func (j *BookingExpiryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return fmt.Errorf("invalid booking expiry schedule %q: %w", j.schedule, err)
	}

	go j.run()
	j.cron.Start()
	utils.Logger.WithField("schedule", j.schedule).Info("booking expiry job started")
	return nil
}

// Stop waits for a running pass to finish.
func (j *BookingExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	utils.Logger.Info("booking expiry job stopped")
}

func (j *BookingExpiryJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), expiryRunTimeout)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		utils.Logger.WithError(err).Error("booking expiry failed")
	}
}

// RunOnce performs a single expiry pass and reports how many bookings it cancelled.
func (j *BookingExpiryJob) RunOnce(ctx context.Context) (int64, error) {
	n, err := j.expirer.ExpireStalePending(ctx, j.now())
	if err != nil {
		return 0, fmt.Errorf("expiring stale bookings: %w", err)
	}
	if n > 0 {
		utils.Logger.WithField("count", n).Info("cancelled stale pending bookings")
	} else {
		utils.Logger.Debug("no stale pending bookings")
	}
	return n, nil
}
