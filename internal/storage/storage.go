package storage

import (
	"context"
	"fmt"
	"time"
)

// Archive persists raw webhook deliveries outside the database so a
// disputed payment can be traced back to the exact bytes received.
// Store returns the key the payload was filed under.
type Archive interface {
	Store(ctx context.Context, payload []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// deliveryKey is the date-partitioned key for one delivery. Both
// drivers share it so switching drivers keeps the layout.
func deliveryKey(now time.Time, id string) string {
	now = now.UTC()
	return fmt.Sprintf("%04d/%02d/%02d/%s.json", now.Year(), now.Month(), now.Day(), id)
}
