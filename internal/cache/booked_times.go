package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = time.Minute

// BookedTimes: кэш занятых времён храма на дату поверх Redis.
// Значение: JSON-массив строк "HH:MM".
//
// Ключ данных версионный. Invalidate поднимает версию, и список, прочитанный
// из базы до инвалидации, пишется под старой версией, которую уже никто не читает.
type BookedTimes struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewBookedTimes(rdb *redis.Client, ttl time.Duration) *BookedTimes {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &BookedTimes{rdb: rdb, ttl: ttl}
}

func VersionKey(templeID uuid.UUID, date string) string {
	return fmt.Sprintf("slots:%s:%s:ver", templeID, date)
}

func Key(templeID uuid.UUID, date string, version int64) string {
	return fmt.Sprintf("slots:%s:%s:v%d", templeID, date, version)
}

// versionTTL переживает любой ключ данных: иначе сброс версии в 0
// оживил бы старый список.
func (c *BookedTimes) versionTTL() time.Duration {
	return c.ttl + time.Hour
}

func (c *BookedTimes) version(ctx context.Context, templeID uuid.UUID, date string) (int64, error) {
	v, err := c.rdb.Get(ctx, VersionKey(templeID, date)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Get возвращает список и версию, под которой его надо записать при промахе.
func (c *BookedTimes) Get(ctx context.Context, templeID uuid.UUID, date string) ([]string, int64, bool, error) {
	ver, err := c.version(ctx, templeID, date)
	if err != nil {
		return nil, 0, false, err
	}
	raw, err := c.rdb.Get(ctx, Key(templeID, date, ver)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ver, false, nil
	}
	if err != nil {
		return nil, ver, false, err
	}
	var times []string
	if err := json.Unmarshal([]byte(raw), &times); err != nil {
		return nil, ver, false, fmt.Errorf("decode cached slots: %w", err)
	}
	if times == nil {
		times = []string{}
	}
	return times, ver, true, nil
}

func (c *BookedTimes) Set(ctx context.Context, templeID uuid.UUID, date string, version int64, times []string) error {
	if times == nil {
		times = []string{}
	}
	payload, err := json.Marshal(times)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, Key(templeID, date, version), string(payload), c.ttl).Err()
}

func (c *BookedTimes) Invalidate(ctx context.Context, templeID uuid.UUID, date string) error {
	key := VersionKey(templeID, date)
	if err := c.rdb.Incr(ctx, key).Err(); err != nil {
		return err
	}
	return c.rdb.Expire(ctx, key, c.versionTTL()).Err()
}

// Ping нужен проверке готовности.
func (c *BookedTimes) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
