package audit

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	DefaultSweepInterval = 24 * time.Hour
	DefaultRetention     = 30 * 24 * time.Hour
)

// Sweeper deletes change records older than the retention window on a fixed
// interval, independently of request traffic.
type Sweeper struct {
	db        *gorm.DB
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

type SweeperOption func(*Sweeper)

func WithInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithRetention(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.retention = d
		}
	}
}

func WithSweepClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) { s.now = now }
}

func NewSweeper(db *gorm.DB, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		db:        db,
		interval:  DefaultSweepInterval,
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Sweep deletes the records created before now minus the retention window
// and returns how many were deleted.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)

	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&ChangeRecord{})
	if res.Error != nil {
		sweepFailures.Inc()
		return 0, res.Error
	}

	sweptRecords.Add(float64(res.RowsAffected))

	return res.RowsAffected, nil
}

// Run sweeps once per interval until ctx is done. A failed sweep is logged
// and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger := log.WithFields(log.Fields{
		"interval":  s.interval,
		"retention": s.retention,
	})
	logger.Info("change log sweeper started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("change log sweeper stopped")
			return
		case <-ticker.C:
			deleted, err := s.Sweep(ctx)
			if err != nil {
				logger.WithError(err).Error("could not sweep change log")
				continue
			}
			logger.WithField("deleted", deleted).Debug("swept change log")
		}
	}
}
