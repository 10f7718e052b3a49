package notification

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	Get(ctx context.Context, id string) (*Notification, error)
	// ListFor returns the union of notifications targeted directly at the
	// reader and club notifications for clubs where the reader currently
	// holds an active admin membership, newest first, with the reader's own
	// viewed flag.
	ListFor(ctx context.Context, readerID string) ([]Item, error)
	HasReceipt(ctx context.Context, notificationID, readerID string) (bool, error)
	// AddReceipt is idempotent: inserting an existing receipt is a no-op.
	AddReceipt(ctx context.Context, notificationID, readerID string, at time.Time) error
	RemoveReceipt(ctx context.Context, notificationID, readerID string) error
}
