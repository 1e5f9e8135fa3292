package locking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/invoxel/ap_console_app/internal/apperrors"
)

const lockTTL = 30 * time.Second

// Lock is a held document lock. Release must be called when the guarded
// section is done.
type Lock interface {
	Release(ctx context.Context) error
}

// DocumentLocker serializes mutations to a single document across
// processes. Acquire returns apperrors.ErrConflict when the document is
// already locked.
type DocumentLocker interface {
	Acquire(ctx context.Context, documentID string) (Lock, error)
}

// RedisLocker implements DocumentLocker on top of redislock.
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisLocker creates a locker backed by the given redis client.
func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

func (l *RedisLocker) Acquire(ctx context.Context, documentID string) (Lock, error) {
	lock, err := l.client.Obtain(ctx, fmt.Sprintf("lock:document:%s", documentID), lockTTL, nil)
	if err == redislock.ErrNotObtained {
		return nil, fmt.Errorf("document %s is locked: %w", documentID, apperrors.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain document lock: %w", err)
	}
	return redisLock{lock}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

func (r redisLock) Release(ctx context.Context) error {
	return r.lock.Release(ctx)
}

// LocalLocker is an in-process DocumentLocker for single-node deployments
// and tests.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLocker creates an in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

func (l *LocalLocker) Acquire(ctx context.Context, documentID string) (Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[documentID]; ok {
		return nil, fmt.Errorf("document %s is locked: %w", documentID, apperrors.ErrConflict)
	}
	l.held[documentID] = struct{}{}
	return localLock{locker: l, documentID: documentID}, nil
}

type localLock struct {
	locker     *LocalLocker
	documentID string
}

func (l localLock) Release(_ context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()
	delete(l.locker.held, l.documentID)
	return nil
}
