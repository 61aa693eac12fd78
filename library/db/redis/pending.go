package redis

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/redis/go-redis/v9"
)

// SetPendingQuestion stores the question text under token with expiration
func (db *DB) SetPendingQuestion(ctx context.Context,
	token string,
	text string,
	ttl time.Duration,
) error {
	key := KeyPrefixPendingQuestion + token
	if err := db.cli.SetEx(ctx, key, text, ttl).Err(); err != nil {
		return errors.Wrapf(err, "setex %q", key)
	}

	return nil
}

// GetPendingQuestion loads the question text by token,
// ok is false if the token is unknown or expired.
func (db *DB) GetPendingQuestion(ctx context.Context, token string) (text string, ok bool, err error) {
	key := KeyPrefixPendingQuestion + token
	text, err = db.cli.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, errors.Wrapf(err, "get %q", key)
	}

	return text, true, nil
}
