package tasks

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// TokenPurger deletes API tokens past their expiry.
type TokenPurger interface {
	PurgeExpiredTokens() (int64, error)
}

// PurgeExpiredTokensTask deletes expired API tokens.
type PurgeExpiredTokensTask struct{}

func (t PurgeExpiredTokensTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_expired_tokens",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: true,
		},
	}
}

func PurgeExpiredTokensProcessor(purger TokenPurger) backlite.QueueProcessor[PurgeExpiredTokensTask] {
	return func(ctx context.Context, _ PurgeExpiredTokensTask) error {
		if purger == nil {
			return errors.New("token purger not configured")
		}

		purged, err := purger.PurgeExpiredTokens()
		if err != nil {
			return err
		}
		if purged > 0 {
			log.Printf("[tasks] purged %d expired API tokens", purged)
		}
		return nil
	}
}

func NewPurgeExpiredTokensQueue(purger TokenPurger) backlite.Queue {
	return backlite.NewQueue(PurgeExpiredTokensProcessor(purger))
}
