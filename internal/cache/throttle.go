package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const signupKeyPrefix = "signup:mail:"

// SignupThrottle limits how often a confirmation code can be re-sent for one
// username.
type SignupThrottle struct {
	client   *redis.Client
	cooldown time.Duration
	log      zerolog.Logger
}

func NewSignupThrottle(client *redis.Client, cooldown time.Duration, log zerolog.Logger) *SignupThrottle {
	return &SignupThrottle{client: client, cooldown: cooldown, log: log}
}

// Allow reports whether a code may be sent now, and if so starts the cooldown.
// Without redis, or when redis fails, sending is always allowed.
func (t *SignupThrottle) Allow(ctx context.Context, username string) bool {
	if t == nil || t.client == nil || t.cooldown <= 0 {
		return true
	}

	key := signupKeyPrefix + strings.ToLower(username)
	ok, err := t.client.SetNX(ctx, key, 1, t.cooldown).Result()
	if err != nil {
		t.log.Warn().Err(err).Str("username", username).Msg("signup throttle unavailable")
		return true
	}
	return ok
}
