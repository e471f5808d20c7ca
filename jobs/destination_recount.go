package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/lodgelist/lodgelist/internal/jobs"
)

// CounterStore refreshes a destination's denormalized listing counter from
// the live accommodations table; the destinations repository implements it.
type CounterStore interface {
	RefreshAccommodationCount(ctx context.Context, destinationID string) error
}

// DestinationRecountJob keeps destination counters in step with listing
// churn. It runs after every listing create, delete and restore.
type DestinationRecountJob struct {
	Store   CounterStore
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewDestinationRecountJob constructs the job handler.
func NewDestinationRecountJob(store CounterStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *DestinationRecountJob {
	return &DestinationRecountJob{Store: store, Logger: logger, Metrics: metrics}
}

// Handle executes one recount.
func (j *DestinationRecountJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("destination recount: dependencies not configured")
	}
	var payload DestinationRecountPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.DestinationID == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskDestinationRecount)
	err := j.Store.RefreshAccommodationCount(ctx, payload.DestinationID)
	if err != nil {
		j.log().Error("refresh listing counter",
			slog.String("destination_id", payload.DestinationID), slog.Any("error", err))
	} else {
		j.log().Info("refreshed listing counter", slog.String("destination_id", payload.DestinationID))
	}
	return tracker.End(err)
}

func (j *DestinationRecountJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *DestinationRecountJob) log() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDestinationRecount))
	}
	return slog.Default().With(slog.String("job", TaskDestinationRecount))
}
