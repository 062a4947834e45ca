// Package counter keeps monthly generation counters in Redis and drains them
// into the generation_usages table.
package counter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ManuelReschke/CopyFox/internal/pkg/logger"
)

const (
	keyPrefix   = "usage:generations"
	periodsKey  = keyPrefix + ":periods"
	totalsTTL   = 40 * 24 * time.Hour
	releaseNoop = -1

	flushLockTTL = 30 * time.Second
	seedLockWait = 2 * time.Second
	lockPoll     = 20 * time.Millisecond
)

// UsageStore persists drained counters. billing.Repository satisfies it.
type UsageStore interface {
	GetGenerationUsage(userID uint, period string) (int64, error)
	AddGenerationUsage(period string, increments map[uint]int64) error
}

// totals holds the running monthly count used for limit checks. pending holds
// increments not yet written to the database.
func totalsKey(period string) string  { return keyPrefix + ":" + period + ":total" }
func pendingKey(period string) string { return keyPrefix + ":" + period + ":pending" }
func lockKey(period string) string    { return keyPrefix + ":" + period + ":lock" }

// KEYS: totals, pending, periods. ARGV: user, limit, ttl seconds, period.
var reserveScript = redis.NewScript(`
local used = tonumber(redis.call('HGET', KEYS[1], ARGV[1]) or '0')
local limit = tonumber(ARGV[2])
if limit >= 0 and used >= limit then
  return {used, 0}
end
used = redis.call('HINCRBY', KEYS[1], ARGV[1], 1)
redis.call('HINCRBY', KEYS[2], ARGV[1], 1)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[3]))
redis.call('SADD', KEYS[3], ARGV[4])
return {used, 1}
`)

// KEYS: totals, pending. ARGV: user.
var releaseScript = redis.NewScript(`
local used = tonumber(redis.call('HGET', KEYS[1], ARGV[1]) or '0')
if used <= 0 then
  return -1
end
redis.call('HINCRBY', KEYS[2], ARGV[1], -1)
return redis.call('HINCRBY', KEYS[1], ARGV[1], -1)
`)

// KEYS: lock. ARGV: token.
var unlockScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// GenerationMeter is a Redis-backed billing.UsageMeter. Reservations are
// atomic across all API instances sharing the Redis server.
type GenerationMeter struct {
	rdb   *redis.Client
	store UsageStore
}

// NewGenerationMeter creates a meter. store may be nil when no database is attached.
func NewGenerationMeter(rdb *redis.Client, store UsageStore) *GenerationMeter {
	return &GenerationMeter{rdb: rdb, store: store}
}

// seed loads the persisted count into the totals hash the first time a user
// is seen in a period, so restarts and evictions keep counting from the database.
// It holds the period lock so a concurrent flush cannot move counts between
// the database and the pending hashes while they are read.
func (m *GenerationMeter) seed(ctx context.Context, userID uint, period string) error {
	field := userField(userID)
	exists, err := m.rdb.HExists(ctx, totalsKey(period), field).Result()
	if err != nil || exists {
		return err
	}

	unlock, err := m.waitLock(ctx, period, seedLockWait)
	if err != nil {
		return err
	}
	defer unlock()

	// Counts move pending -> tmp -> database, so reading in that order
	// never misses one even without the lock.
	pending, err := m.rdb.HGet(ctx, pendingKey(period), field).Int64()
	if err != nil && err != redis.Nil {
		return err
	}
	draining, err := m.drainingCount(ctx, period, field)
	if err != nil {
		return err
	}
	var base int64
	if m.store != nil {
		if base, err = m.store.GetGenerationUsage(userID, period); err != nil {
			return fmt.Errorf("load persisted usage: %w", err)
		}
	}
	if err := m.rdb.HSetNX(ctx, totalsKey(period), field, base+pending+draining).Err(); err != nil {
		return err
	}
	return m.rdb.Expire(ctx, totalsKey(period), totalsTTL).Err()
}

// drainingCount sums the user's field over pending hashes a flush has
// renamed but not yet written to the database.
func (m *GenerationMeter) drainingCount(ctx context.Context, period, field string) (int64, error) {
	var total int64
	iter := m.rdb.Scan(ctx, 0, pendingKey(period)+":tmp:*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := m.rdb.HGet(ctx, iter.Val(), field).Int64()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, iter.Err()
}

// tryLock takes the period lock. The returned func releases it and is nil
// when another holder has it.
func (m *GenerationMeter) tryLock(ctx context.Context, period string) (func(), error) {
	token := uuid.NewString()
	ok, err := m.rdb.SetNX(ctx, lockKey(period), token, flushLockTTL).Result()
	if err != nil || !ok {
		return nil, err
	}
	return func() {
		if err := unlockScript.Run(context.WithoutCancel(ctx), m.rdb, []string{lockKey(period)}, token).Err(); err != nil {
			logger.L().Warn("usage lock release failed", zap.String("period", period), zap.Error(err))
		}
	}, nil
}

// waitLock polls for the period lock up to wait. On timeout it returns a
// no-op unlock and the caller proceeds unlocked.
func (m *GenerationMeter) waitLock(ctx context.Context, period string, wait time.Duration) (func(), error) {
	deadline := time.Now().Add(wait)
	for {
		unlock, err := m.tryLock(ctx, period)
		if err != nil {
			return nil, err
		}
		if unlock != nil {
			return unlock, nil
		}
		if time.Now().After(deadline) {
			logger.L().Warn("usage lock busy, seeding without it", zap.String("period", period))
			return func() {}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPoll):
		}
	}
}

// Generations returns the user's count for period.
func (m *GenerationMeter) Generations(ctx context.Context, userID uint, period string) (int64, error) {
	if err := m.seed(ctx, userID, period); err != nil {
		return 0, err
	}
	n, err := m.rdb.HGet(ctx, totalsKey(period), userField(userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// Reserve counts one generation unless the user already reached limit.
func (m *GenerationMeter) Reserve(ctx context.Context, userID uint, period string, limit int64) (int64, bool, error) {
	if err := m.seed(ctx, userID, period); err != nil {
		return 0, false, err
	}
	res, err := reserveScript.Run(ctx, m.rdb,
		[]string{totalsKey(period), pendingKey(period), periodsKey},
		userField(userID), limit, int64(totalsTTL/time.Second), period,
	).Int64Slice()
	if err != nil {
		return 0, false, err
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("unexpected reserve result %v", res)
	}
	return res[0], res[1] == 1, nil
}

// Release undoes one reservation. Releasing at zero is a no-op.
func (m *GenerationMeter) Release(ctx context.Context, userID uint, period string) error {
	n, err := releaseScript.Run(ctx, m.rdb, []string{totalsKey(period), pendingKey(period)}, userField(userID)).Int64()
	if err != nil {
		return err
	}
	if n == releaseNoop {
		logger.L().Debug("release without reservation", zap.Uint("user_id", userID), zap.String("period", period))
	}
	return nil
}

// Flush drains the pending hashes of every known period into the store.
// Periods other than current are forgotten once drained.
func (m *GenerationMeter) Flush(ctx context.Context, current string) error {
	if m.store == nil {
		return nil
	}
	periods, err := m.rdb.SMembers(ctx, periodsKey).Result()
	if err != nil {
		return err
	}
	sort.Strings(periods)
	for _, period := range periods {
		if err := m.flushPeriod(ctx, period); err != nil {
			return fmt.Errorf("flush %s: %w", period, err)
		}
		if period != current {
			m.rdb.SRem(ctx, periodsKey, period)
		}
	}
	return nil
}

// flushPeriod drains a pending hash atomically and applies the batched increments.
// RENAME to a temporary key keeps in-flight increments for the next flush.
// A period locked by a seeding request is skipped until the next tick.
func (m *GenerationMeter) flushPeriod(ctx context.Context, period string) error {
	unlock, err := m.tryLock(ctx, period)
	if err != nil {
		return err
	}
	if unlock == nil {
		logger.L().Debug("usage period locked, flush deferred", zap.String("period", period))
		return nil
	}
	defer unlock()

	key := pendingKey(period)
	tmpKey := fmt.Sprintf("%s:tmp:%d", key, time.Now().UnixNano())
	if err := m.rdb.Rename(ctx, key, tmpKey).Err(); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "no such key") || err == redis.Nil {
			return nil
		}
		return err
	}

	data, err := m.rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}

	increments := make(map[uint]int64, len(data))
	for k, v := range data {
		id, perr := strconv.ParseUint(k, 10, 64)
		if perr != nil {
			continue
		}
		inc, ierr := strconv.ParseInt(v, 10, 64)
		if ierr != nil || inc == 0 {
			continue
		}
		increments[uint(id)] = inc
	}

	if err := m.store.AddGenerationUsage(period, increments); err != nil {
		// Put the drained counts back so the next flush retries them.
		for id, inc := range increments {
			m.rdb.HIncrBy(ctx, key, userField(id), inc)
		}
		m.rdb.Del(ctx, tmpKey)
		return err
	}
	m.rdb.Del(ctx, tmpKey)
	if len(increments) > 0 {
		logger.L().Debug("generation usage flushed", zap.String("period", period), zap.Int("users", len(increments)))
	}
	return nil
}

func userField(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}
