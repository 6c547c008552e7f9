package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Immediate(3).Do(context.Background(), "test", func() error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	calls := 0
	err := Immediate(2).Do(context.Background(), "test", func() error {
		calls++
		return errFlaky
	})

	require.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, calls, "first attempt plus two retries")
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	err := Immediate(5).Do(context.Background(), "test", func() error {
		calls++
		return Permanent(errFlaky)
	})

	require.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 1, calls)
}

func TestDo_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Immediate(5).Do(ctx, "test", func() error {
		calls++
		return errFlaky
	})

	require.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}
