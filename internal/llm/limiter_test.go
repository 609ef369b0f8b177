package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterAdmitsUpToCapacity(t *testing.T) {
	l := NewLimiter(2, 0)
	r1, err := l.Acquire(context.Background())
	require.NoError(t, err)
	r2, err := l.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), l.InFlight())

	_, err = l.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrSaturated)

	r1()
	r1()
	assert.Equal(t, int64(1), l.InFlight())
	r3, err := l.Acquire(context.Background())
	require.NoError(t, err)
	r2()
	r3()
	assert.Zero(t, l.InFlight())
}

func TestLimiterQueuesUntilRelease(t *testing.T) {
	l := NewLimiter(1, time.Second)
	release, err := l.Acquire(context.Background())
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()

	next, err := l.Acquire(context.Background())
	require.NoError(t, err)
	next()
}

func TestLimiterGivesUpAfterWait(t *testing.T) {
	l := NewLimiter(1, 20*time.Millisecond)
	release, err := l.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	_, err = l.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrSaturated)
}

func TestLimiterReturnsCallerCancellation(t *testing.T) {
	l := NewLimiter(1, time.Second)
	release, err := l.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err = l.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNilLimiterAdmitsEverything(t *testing.T) {
	var l *Limiter
	assert.Nil(t, NewLimiter(0, time.Second))
	release, err := l.Acquire(context.Background())
	require.NoError(t, err)
	release()
	assert.Zero(t, l.InFlight())
}
