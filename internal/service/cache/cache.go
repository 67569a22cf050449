package cache

import (
	"context"
	"fmt"
	"time"
)

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// DatasetKey builds the cache key for one provider dataset window.
// Windows are date-granular, so the day stamp is enough to key on.
func DatasetKey(athleteID, dataset string, from, to time.Time) string {
	return fmt.Sprintf("loadledger:ds:%s:%s:%s:%s",
		athleteID, dataset, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

// ProfileKey builds the cache key for the athlete profile, which has no
// date window.
func ProfileKey(athleteID string) string {
	return fmt.Sprintf("loadledger:ds:%s:profile", athleteID)
}
