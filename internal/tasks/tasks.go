package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	// Housekeeping tasks
	TypePurgeRevokedTokens = "auth:purge_revoked_tokens"
)

// PurgePayload carries the cutoff for a purge; revocations that expired before it are removed
type PurgePayload struct {
	Before time.Time `json:"before"`
}

// NewPurgeRevokedTokensTask creates a task that purges revocations expired before the given time
func NewPurgeRevokedTokensTask(before time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(PurgePayload{Before: before.UTC()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypePurgeRevokedTokens, payload), nil
}

// ParsePurgePayload parses the purge payload from an Asynq task
func ParsePurgePayload(task *asynq.Task) (PurgePayload, error) {
	var payload PurgePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
