// Package jobs contains the background task definitions and the Asynq
// worker runtime that executes them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDestinationRecount refreshes one destination's denormalized
	// listing counter.
	TaskDestinationRecount = "destinations:recount"
	// TaskPurgeDeleted permanently removes soft-deleted rows past the
	// retention window.
	TaskPurgeDeleted = "maintenance:purge_deleted"
)

// DestinationRecountPayload identifies the destination to recount.
type DestinationRecountPayload struct {
	DestinationID string `json:"destination_id"`
}

// NewDestinationRecountTask constructs an Asynq task for the recount job.
func NewDestinationRecountTask(destinationID string) (*asynq.Task, error) {
	data, err := json.Marshal(DestinationRecountPayload{DestinationID: destinationID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDestinationRecount, data, asynq.Queue(QueueDefault)), nil
}

// NewPurgeDeletedTask constructs the purge task. It carries no payload; the
// retention window is worker configuration.
func NewPurgeDeletedTask() *asynq.Task {
	return asynq.NewTask(TaskPurgeDeleted, nil, asynq.Queue(QueueDefault))
}
