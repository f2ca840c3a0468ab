package redis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/greetcount/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var (
	_ pr.Provider    = (*Redis)(nil)
	_ pr.Incrementer = (*Redis)(nil)
	_ pr.Pinger      = (*Redis)(nil)
)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

// Dial builds a client for addr and returns a provider that owns it.
// No connection is made until the first command.
func Dial(addr, password string, db int) *Redis {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Redis{rdb: rdb, closeClient: true}
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0 // treat negative TTLs as "no expiry" per provider contract
	}
	return p.rdb.Set(ctx, key, value, ttl).Err()
}

// incrRetries bounds optimistic retries when another client changes the key
// between WATCH and EXEC. Every round commits at least one contender.
const incrRetries = 100

var errIncrContended = errors.New("redis provider: incr retries exhausted")

// Incr increments a non-negative decimal counter inside WATCH/MULTI. A plain
// INCR would count up from a negative value, so the stored value is checked
// first and the increment only commits if the key was not touched meanwhile.
// When ttl > 0 the expiry is refreshed in the same transaction.
func (p *Redis) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var n int64

	txf := func(tx *goredis.Tx) error {
		v, err := tx.Get(ctx, key).Result()
		switch {
		case err == goredis.Nil:
		case err != nil:
			return err
		default:
			cur, perr := strconv.ParseInt(v, 10, 64)
			if perr != nil || cur < 0 {
				return fmt.Errorf("%w: %q", pr.ErrNotInteger, v)
			}
			if cur == math.MaxInt64 {
				return pr.ErrOverflow
			}
		}

		var incr *goredis.IntCmd
		_, err = tx.TxPipelined(ctx, func(pl goredis.Pipeliner) error {
			incr = pl.Incr(ctx, key)
			if ttl > 0 {
				pl.PExpire(ctx, key, ttl)
			}
			return nil
		})
		if err != nil {
			return err
		}
		n = incr.Val()
		return nil
	}

	for i := 0; i < incrRetries; i++ {
		err := p.rdb.Watch(ctx, txf, key)
		if err == goredis.TxFailedErr {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			continue
		}
		if err != nil {
			return 0, mapIncrErr(err)
		}
		return n, nil
	}
	return 0, errIncrContended
}

func (p *Redis) Del(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

func (p *Redis) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

// mapIncrErr maps the INCR error replies ("value is not an integer or out of
// range", "increment or decrement would overflow") to provider sentinels.
func mapIncrErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pr.ErrNotInteger), errors.Is(err, pr.ErrOverflow):
		return err
	case strings.Contains(err.Error(), "not an integer"):
		return errors.Join(pr.ErrNotInteger, err)
	case strings.Contains(err.Error(), "would overflow"):
		return errors.Join(pr.ErrOverflow, err)
	}
	return err
}
