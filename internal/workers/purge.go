package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/recipebox-dev/recipebox/internal/models"
	"github.com/recipebox-dev/recipebox/internal/tasks"
)

// HandlePurgeRevokedTokens deletes revocation records whose tokens have expired.
// An expired token is rejected on its own, so its revocation no longer matters.
func HandlePurgeRevokedTokens(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParsePurgePayload(t)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	before := payload.Before
	if before.IsZero() {
		before = time.Now().UTC()
	}

	purged, err := PurgeRevokedTokens(ctx, db, before)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to purge revoked tokens")
		return err
	}

	logger.Info().
		Int64("purged", purged).
		Time("before", before).
		Msg("Purged expired token revocations")

	return nil
}

// PurgeRevokedTokens removes revocations that expired before the cutoff and reports how many went
func PurgeRevokedTokens(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at < ?", before.UTC()).Delete(&models.RevokedToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete revoked tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
