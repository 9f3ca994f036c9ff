package tasks

import (
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeTaskPayload(t *testing.T) {
	before := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	task, err := NewPurgeRevokedTokensTask(before)
	require.NoError(t, err)
	assert.Equal(t, TypePurgeRevokedTokens, task.Type())

	payload, err := ParsePurgePayload(task)
	require.NoError(t, err)
	assert.True(t, before.Equal(payload.Before))
}

func TestParsePurgePayloadInvalid(t *testing.T) {
	_, err := ParsePurgePayload(asynq.NewTask(TypePurgeRevokedTokens, []byte("{")))
	assert.Error(t, err)
}
