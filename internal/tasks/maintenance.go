package tasks

import (
	"context"

	"github.com/mikestefanello/backlite"
)

// Maintenance is the set of housekeeping tasks enqueued together.
func (c *Client) Maintenance() []backlite.Task {
	return []backlite.Task{
		CleanupAuditEventsTask{RetentionDays: c.config.AuditRetentionDays},
		PurgeExpiredTokensTask{},
	}
}

// EnqueueMaintenance queues one round of housekeeping.
func (c *Client) EnqueueMaintenance(ctx context.Context) ([]string, error) {
	return c.Enqueue(ctx, c.Maintenance()...)
}

// RegisterMaintenance registers the housekeeping queues. Must be called
// before Start().
func (c *Client) RegisterMaintenance(cleaner AuditEventCleaner, purger TokenPurger) {
	c.Register(
		NewCleanupAuditEventsQueue(cleaner),
		NewPurgeExpiredTokensQueue(purger),
	)
}
