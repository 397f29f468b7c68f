package scanner

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:generate mockgen -source=lock.go -destination=../mocks/scanner/mock.go -package=mocks
type locker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// unlockScript deletes the lock only if it still holds our token.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// tickLock keeps replicas from scanning the same tick. It only saves work:
// the claim in the store is what prevents double delivery.
type tickLock struct {
	client locker
	key    string
	ttl    time.Duration
}

func (l *tickLock) acquire(ctx context.Context, token string) (bool, error) {
	return l.client.SetNX(ctx, l.key, token, l.ttl).Result()
}

func (l *tickLock) release(ctx context.Context, token string) error {
	return l.client.Eval(ctx, unlockScript, []string{l.key}, token).Err()
}
