package locking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/invoxel/ap_console_app/internal/apperrors"
)

func TestLocalLockerAcquireRelease(t *testing.T) {
	ctx := context.Background()
	locker := NewLocalLocker()

	lock, err := locker.Acquire(ctx, "doc-1")
	assert.NoError(t, err, "First acquire should succeed")
	assert.NotNil(t, lock)

	// Second acquire on the same document must fail while held
	_, err = locker.Acquire(ctx, "doc-1")
	assert.ErrorIs(t, err, apperrors.ErrConflict, "Second acquire should report a conflict")

	// A different document is unaffected
	other, err := locker.Acquire(ctx, "doc-2")
	assert.NoError(t, err, "Different document should lock independently")
	assert.NoError(t, other.Release(ctx))

	// After release the document can be locked again
	assert.NoError(t, lock.Release(ctx))
	relock, err := locker.Acquire(ctx, "doc-1")
	assert.NoError(t, err, "Acquire after release should succeed")
	assert.NoError(t, relock.Release(ctx))
}
