package utils

import (
	"context"
	"time"
)

// DefaultDBTimeout bounds every single-statement database call. Order
// placement runs several statements in one transaction and still fits
// comfortably inside it.
const DefaultDBTimeout = 5 * time.Second

func WithDBTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DefaultDBTimeout)
}
