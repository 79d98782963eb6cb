package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_RetryOnce_SecondAttemptWins(t *testing.T) {
	calls := 0
	err := RetryOnce(context.Background(), time.Millisecond, func() error {
		calls++
		if calls == 1 {
			return errors.New("flaky")
		}

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func Test_RetryOnce_PersistentFailure(t *testing.T) {
	calls := 0
	wantErr := errors.New("down")
	err := RetryOnce(context.Background(), time.Millisecond, func() error {
		calls++
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
	require.Equal(t, 2, calls)
}

func Test_RetryOnce_CancelledContextSkipsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryOnce(ctx, time.Hour, func() error {
		calls++
		return errors.New("flaky")
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}
