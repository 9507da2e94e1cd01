package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_Do_SucceedsAfterRetries(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: time.Millisecond, Mode: Fixed}
	attempts := 0

	err := p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestPolicy_Do_PropagatesLastErrorAfterExhaustion(t *testing.T) {
	p := Policy{MaxAttempts: 2, Delay: time.Millisecond, Mode: Fixed}
	attempts := 0
	wantErr := errors.New("permanent")

	err := p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return wantErr
	})

	require.Error(t, err)
	assert.Equal(t, wantErr, err)
	assert.Equal(t, 2, attempts)
}

func TestPolicy_Do_ExponentialDelayGrowth(t *testing.T) {
	p := Policy{MaxAttempts: 4, Delay: time.Millisecond, Mode: Exponential}
	assert.Equal(t, time.Millisecond, p.delayFor(1))
	assert.Equal(t, 2*time.Millisecond, p.delayFor(2))
	assert.Equal(t, 4*time.Millisecond, p.delayFor(3))
}

func TestPolicy_Do_RespectsContextCancellation(t *testing.T) {
	p := Policy{MaxAttempts: 5, Delay: 50 * time.Millisecond, Mode: Fixed}
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	err := p.Do(ctx, func(ctx context.Context) error {
		attempts++
		return errors.New("always fails")
	})

	require.Error(t, err)
	assert.Less(t, attempts, 5)
}

func TestResettable_ResetsAttemptCounterOnSuccess(t *testing.T) {
	r := NewResettable(Policy{Delay: time.Millisecond, Mode: Exponential})
	first := r.NextDelay()
	second := r.NextDelay()
	assert.Greater(t, second, first)

	r.Reset()
	afterReset := r.NextDelay()
	assert.Equal(t, first, afterReset)
}
