package quest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/questservice/cache"
)

const lockPollInterval = 25 * time.Millisecond

func generationLockKey(playerID string) string {
	return "quest:gen:" + playerID
}

// acquireLock takes the per-player generation lock, polling until wait has
// elapsed. The returned release only deletes the key while this caller
// still owns it, so an expired holder cannot free someone else's lock.
func acquireLock(ctx context.Context, c cache.Cache, key string, ttl, wait time.Duration) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(wait)
	for {
		ok, err := c.SetNX(ctx, key, token, ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				_, _ = c.DelIfValue(context.WithoutCancel(ctx), key, token)
			}, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrBusy
		}
		t := time.NewTimer(lockPollInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}
