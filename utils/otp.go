// utils/otp.go
package utils

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

// ErrTooManyAttempts is returned when a phone number has burned its
// verification budget for the hour.
var ErrTooManyAttempts = errors.New("too many OTP attempts")

// attemptScript bumps the counter and sets the hour window in one round
// trip, so a crash between the two can never leave a counter without a
// TTL. Returns the attempt count.
var attemptScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// ValidateOTPAttempts counts verification attempts per phone number in
// Redis and rejects after 5 per hour. With no Redis configured the
// limiter is disabled.
func ValidateOTPAttempts(ctx context.Context, phone string, rdb *redis.Client) error {
	if rdb == nil {
		return nil
	}

	key := "otp_attempts:" + phone
	attempts, err := attemptScript.Run(ctx, rdb, []string{key}, 3600).Int64()
	if err != nil {
		return err
	}

	if attempts > 5 {
		return ErrTooManyAttempts
	}

	return nil
}
