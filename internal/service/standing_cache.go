package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/wma-backend/internal/config"
)

// errStaleStanding means the cache was invalidated after the standing was
// computed, so the standing must not be cached.
var errStaleStanding = errors.New("standing computed before last invalidation")

// minGenTTL bounds how long an idle generation counter is kept.
const minGenTTL = time.Hour

// cacheGen pairs the student's and the global invalidation counters. A
// standing may be cached only under the generation it was computed in.
type cacheGen struct {
	student int64
	global  int64
}

func genKeys(studentID int) []string {
	return []string{config.CacheKey.StudentGPAGenKey(studentID), config.CacheKey.GPAGenKey()}
}

// currentGen reads the generation before results are loaded.
func (s *GradingService) currentGen(ctx context.Context, studentID int) (cacheGen, error) {
	return readGen(ctx, s.rdb, studentID)
}

type genReader interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

func readGen(ctx context.Context, rdb genReader, studentID int) (cacheGen, error) {
	vals, err := rdb.MGet(ctx, genKeys(studentID)...).Result()
	if err != nil {
		return cacheGen{}, err
	}
	return parseGen(vals)
}

func parseGen(vals []interface{}) (cacheGen, error) {
	if len(vals) != 2 {
		return cacheGen{}, fmt.Errorf("expected 2 generation values, got %d", len(vals))
	}
	var out [2]int64
	for i, v := range vals {
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			return cacheGen{}, fmt.Errorf("generation value has type %T", v)
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return cacheGen{}, fmt.Errorf("parse generation: %w", err)
		}
		out[i] = n
	}
	return cacheGen{student: out[0], global: out[1]}, nil
}

// setIfCurrent caches raw under key only while the generation still equals
// gen. WATCH makes an Invalidate that lands between the check and the write
// abort the write.
func (s *GradingService) setIfCurrent(ctx context.Context, studentID int, gen cacheGen, key string, raw []byte) error {
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		now, err := readGen(ctx, tx, studentID)
		if err != nil {
			return err
		}
		if now != gen {
			return errStaleStanding
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, s.cfg.GPACacheTTL)
			return nil
		})
		return err
	}, genKeys(studentID)...)
	if errors.Is(err, redis.TxFailedErr) {
		return errStaleStanding
	}
	return err
}

// bumpGen advances a generation counter so in-flight computations skip caching.
func (s *GradingService) bumpGen(ctx context.Context, key string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, s.genTTL())
		return nil
	})
	return err
}

func (s *GradingService) genTTL() time.Duration {
	return max(2*s.cfg.GPACacheTTL, minGenTTL)
}
