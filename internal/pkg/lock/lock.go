package lock

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "runlock:"

// Locker 基于 Redis SETNX 的批处理互斥锁，
// 用于保证计费引擎同一时间只有一个实例在跑
type Locker struct {
	rdb *redis.Client
}

func NewLocker(rdb *redis.Client) *Locker {
	return &Locker{rdb: rdb}
}

// Acquire 尝试获取锁，返回 false 表示已被其他实例持有
func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, keyPrefix+name, time.Now().Unix(), ttl).Result()
}

// Release 释放锁
func (l *Locker) Release(ctx context.Context, name string) error {
	return l.rdb.Del(ctx, keyPrefix+name).Err()
}
