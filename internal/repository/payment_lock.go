package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisPaymentLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPaymentLock(client *redis.Client, ttl time.Duration) PaymentLock {
	return &redisPaymentLock{client: client, ttl: ttl}
}

func paymentLockKey(installmentID string) string {
	return fmt.Sprintf("payment:lock:%s", installmentID)
}

func (l *redisPaymentLock) Acquire(ctx context.Context, installmentID string) (func(), bool, error) {
	key := paymentLockKey(installmentID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// the caller's context may already be done
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}
	return release, true, nil
}

type noopPaymentLock struct{}

// NewNoopPaymentLock is used when no Redis is configured
func NewNoopPaymentLock() PaymentLock {
	return noopPaymentLock{}
}

func (noopPaymentLock) Acquire(context.Context, string) (func(), bool, error) {
	return func() {}, true, nil
}
