// services/otp_store_redis.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/immuneplus/immuneplus_backend/models"
)

// consumeScript checks and deletes a code in one round trip so that two
// concurrent Consume calls can never both succeed with the same code.
// Returns 1 on match, -1 on mismatch, 0 when no code is pending.
var consumeScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v then
  return 0
end
if v ~= ARGV[1] then
  return -1
end
redis.call("DEL", KEYS[1])
return 1
`)

// RedisOTPStore keeps pending codes in Redis with a per-key TTL, so
// multiple instances of the backend share the same pending-code state.
// Redis drops expired keys itself, so an expired code reports as
// ErrOTPNotFound; callers see the same message either way.
type RedisOTPStore struct {
	client *redis.Client
}

// NewRedisOTPStore wraps the given Redis client.
func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client}
}

func otpKey(phone string) string {
	return "otp:" + phone
}

// Put stores the code under the phone's key with the remaining lifetime
// as the TTL, overwriting any pending code.
func (s *RedisOTPStore) Put(ctx context.Context, phone string, otp models.PendingOTP) error {
	ttl := time.Until(otp.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("otp for %s already expired", phone)
	}
	if err := s.client.Set(ctx, otpKey(phone), otp.Code, ttl).Err(); err != nil {
		return &InfrastructureError{Op: "redis set otp", Err: err}
	}
	return nil
}

// Consume atomically checks and deletes the pending code.
func (s *RedisOTPStore) Consume(ctx context.Context, phone, code string) error {
	res, err := consumeScript.Run(ctx, s.client, []string{otpKey(phone)}, code).Int()
	if err != nil {
		return &InfrastructureError{Op: "redis consume otp", Err: err}
	}
	switch res {
	case 1:
		return nil
	case -1:
		return ErrOTPMismatch
	default:
		return ErrOTPNotFound
	}
}
