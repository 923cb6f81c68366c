package lock

import (
	"context"
	"time"
)

// Locker hands out a single named lease. acquired is false when another holder owns it.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

// Local always grants the lease. Used when the service runs as a single replica.
type Local struct{}

func (Local) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}
