package dao

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	"github.com/Laisky/zap"
	"github.com/allegro/bigcache/v3"

	"github.com/Laisky/laisky-qa-bot/internal/qa/model"
	"github.com/Laisky/laisky-qa-bot/library/log"
)

// expiry prefix of every cached value, unix nano
const expiryLen = 8

// Memory is an in-process PendingStore for single instance deployments.
//
// bigcache only evicts expired entries on its cleanup tick,
// so the expiry is stored with the value and checked on read.
type Memory struct {
	cache *bigcache.BigCache
	ttl   time.Duration
	now   func() time.Time
}

// NewMemory creates a bigcache backed store, ttl <= 0 means DefaultPendingTTL
func NewMemory(ttl time.Duration) (*Memory, error) {
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}

	cfg := bigcache.DefaultConfig(ttl)
	cfg.Verbose = false
	cache, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "new bigcache")
	}

	return &Memory{
		cache: cache,
		ttl:   ttl,
		now:   func() time.Time { return gutils.Clock.GetUTCNow() },
	}, nil
}

// Put caches text under a fresh token
func (d *Memory) Put(_ context.Context, text string) (string, error) {
	token := newToken()
	val := make([]byte, expiryLen, expiryLen+len(text))
	binary.BigEndian.PutUint64(val, uint64(d.now().Add(d.ttl).UnixNano()))
	val = append(val, text...)

	if err := d.cache.Set(token, val); err != nil {
		return "", errors.Wrap(err, "set bigcache")
	}

	return token, nil
}

// Get resolves token to the cached text
func (d *Memory) Get(_ context.Context, token string) (string, bool, error) {
	val, err := d.cache.Get(token)
	switch {
	case errors.Is(err, bigcache.ErrEntryNotFound):
		return "", false, nil
	case err != nil:
		return "", false, errors.Wrap(err, "get bigcache")
	case len(val) < expiryLen:
		return "", false, errors.Errorf("corrupted entry for %q", token)
	}

	expireAt := time.Unix(0, int64(binary.BigEndian.Uint64(val[:expiryLen])))
	if !d.now().Before(expireAt) {
		return "", false, nil
	}

	return string(val[expiryLen:]), true, nil
}

// AddFailedRelay has nowhere durable to go, the answer is kept in the log
func (d *Memory) AddFailedRelay(_ context.Context, ticket *model.ExpertTicket) error {
	log.Logger.Error("undelivered expert answer",
		zap.Int64("question_chat_id", ticket.QuestionChatID),
		zap.Int("question_msg_id", ticket.QuestionMsgID),
		zap.Int64("expert_user_id", ticket.ExpertUserID),
		zap.String("answer", ticket.ExpertAnswerText))
	return nil
}

// Close releases the cache
func (d *Memory) Close() error {
	return d.cache.Close()
}
