package redis

import (
	"context"

	"github.com/Laisky/errors/v2"
	gredis "github.com/Laisky/go-redis/v2"
	"github.com/redis/go-redis/v9"
)

// DB is a wrapper for go-redis
type DB struct {
	cli *redis.Client
	db  *gredis.Utils
}

// NewDB creates a new DB instance
func NewDB(opt *redis.Options) *DB {
	rdb := redis.NewClient(opt)
	rutils := gredis.NewRedisUtils(rdb)

	return &DB{
		cli: rdb,
		db:  rutils,
	}
}

// Ping checks the connection
func (db *DB) Ping(ctx context.Context) error {
	return errors.Wrap(db.cli.Ping(ctx).Err(), "ping redis")
}

// Close closes the underlying client
func (db *DB) Close() error {
	return db.cli.Close()
}
