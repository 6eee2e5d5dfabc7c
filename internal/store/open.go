package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Options selects and configures a KV backend.
type Options struct {
	Backend string `validate:"oneof=memory file redis sqlite postgres s3"`

	// file
	Dir string

	// redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// sqlite / postgres
	DSN string

	// s3
	S3 S3Options
}

// Open builds the configured backend. The returned close function releases
// any connection the backend holds and is never nil.
func Open(ctx context.Context, opts Options) (KV, func() error, error) {
	noop := func() error { return nil }

	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), noop, nil

	case "", BackendFile:
		fs, err := NewFileStore(opts.Dir)
		if err != nil {
			return nil, noop, err
		}
		return fs, noop, nil

	case BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, noop, fmt.Errorf("connect redis %s: %w", opts.RedisAddr, err)
		}
		return NewRedisStore(rdb, opts.RedisPrefix), rdb.Close, nil

	case BackendSQLite, BackendPostgres:
		db, err := OpenSQL(opts.Backend, opts.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("open %s: %w", opts.Backend, err)
		}
		closeDB := func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		s, err := NewSQLStore(db)
		if err != nil {
			_ = closeDB()
			return nil, noop, err
		}
		return s, closeDB, nil

	case BackendS3:
		s, err := NewS3Store(ctx, opts.S3)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
