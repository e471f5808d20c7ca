package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/lodgelist/lodgelist/internal/jobs"
)

// PurgeStore permanently removes rows soft-deleted before the cutoff. Each
// entity repository implements it for its own table.
type PurgeStore interface {
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PurgeTarget names one table the purge sweeps.
type PurgeTarget struct {
	Name  string
	Store PurgeStore
}

// PurgeDeletedJob sweeps soft-deleted rows past the retention window. It
// runs nightly from the scheduler.
type PurgeDeletedJob struct {
	Targets   []PurgeTarget
	Retention time.Duration
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics

	clock func() time.Time
}

// NewPurgeDeletedJob constructs the job handler.
func NewPurgeDeletedJob(targets []PurgeTarget, retention time.Duration, logger *slog.Logger, metrics *jobmetrics.Metrics) *PurgeDeletedJob {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &PurgeDeletedJob{
		Targets:   targets,
		Retention: retention,
		Logger:    logger,
		Metrics:   metrics,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (j *PurgeDeletedJob) WithClock(clock func() time.Time) {
	if j != nil && clock != nil {
		j.clock = clock
	}
}

// Handle executes one purge sweep. A failing table does not stop the sweep
// of the remaining tables.
func (j *PurgeDeletedJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || len(j.Targets) == 0 {
		return errors.New("purge deleted: no targets configured")
	}

	tracker := j.metrics().Track(TaskPurgeDeleted)
	cutoff := j.clock().Add(-j.Retention)

	var firstErr error
	for _, target := range j.Targets {
		purged, err := target.Store.PurgeDeletedBefore(ctx, cutoff)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			j.log().Error("purge table", slog.String("table", target.Name), slog.Any("error", err))
			continue
		}
		if purged > 0 {
			j.log().Info("purged soft-deleted rows",
				slog.String("table", target.Name), slog.Int64("rows", purged),
				slog.Time("cutoff", cutoff))
		}
	}
	return tracker.End(firstErr)
}

func (j *PurgeDeletedJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *PurgeDeletedJob) log() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskPurgeDeleted))
	}
	return slog.Default().With(slog.String("job", TaskPurgeDeleted))
}
