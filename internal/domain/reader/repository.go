package reader

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, reader *Reader) error
	GetByID(ctx context.Context, id string) (*Reader, error)
	// GetByLogin matches the value against username OR email.
	GetByLogin(ctx context.Context, login string) (*Reader, error)
	Deactivate(ctx context.Context, id string, leftAt time.Time) error
}
