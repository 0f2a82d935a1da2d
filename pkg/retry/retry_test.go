package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int, patterns ...string) Config {
	return Config{
		MaxAttempts:     attempts,
		InitialDelay:    time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		Multiplier:      2.0,
		RetryableErrors: patterns,
	}
}

// failing returns fn failing with err until it has been called n times.
func failing(n int, err error) (func() error, *int) {
	calls := 0
	return func() error {
		calls++
		if calls <= n {
			return err
		}
		return nil
	}, &calls
}

func TestDo(t *testing.T) {
	refused := errors.New("dial tcp 127.0.0.1:5432: connection refused")
	authFailed := errors.New("password authentication failed")

	tests := []struct {
		name      string
		cfg       Config
		failures  int
		err       error
		wantErr   error
		wantCalls int
	}{
		{name: "first call succeeds", cfg: fastConfig(3), wantCalls: 1},
		{name: "succeeds after retries", cfg: fastConfig(3), failures: 2, err: refused, wantCalls: 3},
		{name: "attempts exhausted", cfg: fastConfig(3), failures: 10, err: refused, wantErr: refused, wantCalls: 3},
		{name: "single attempt", cfg: fastConfig(1), failures: 10, err: refused, wantErr: refused, wantCalls: 1},
		{name: "matching pattern retried", cfg: fastConfig(3, "connection refused"), failures: 1, err: refused, wantCalls: 2},
		{name: "non matching pattern stops", cfg: fastConfig(3, "connection refused"), failures: 10, err: authFailed, wantErr: authFailed, wantCalls: 1},
		{name: "permanent stops", cfg: fastConfig(3), failures: 10, err: Permanent(refused), wantErr: refused, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, calls := failing(tt.failures, tt.err)

			err := Do(context.Background(), tt.cfg, fn)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, *calls)
		})
	}
}

func TestDo_InvalidConfig(t *testing.T) {
	fn, calls := failing(0, nil)
	err := Do(context.Background(), fastConfig(0), fn)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Zero(t, *calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	t.Run("before first attempt", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		fn, calls := failing(0, nil)
		assert.ErrorIs(t, Do(ctx, fastConfig(3), fn), context.Canceled)
		assert.Zero(t, *calls)
	})

	t.Run("during backoff", func(t *testing.T) {
		cfg := fastConfig(5)
		cfg.InitialDelay = time.Minute
		cfg.MaxDelay = time.Minute

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		fn, calls := failing(10, errors.New("i/o timeout"))
		err := Do(ctx, cfg, fn)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, *calls)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestDo_OnRetryHook(t *testing.T) {
	cfg := fastConfig(3)

	var seen []int
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		seen = append(seen, attempt)
		assert.EqualError(t, err, "dial tcp: refused")
		assert.Positive(t, delay)
	}

	err := Do(context.Background(), cfg, func() error {
		return errors.New("dial tcp: refused")
	})

	assert.Error(t, err)
	assert.Equal(t, []int{1, 2}, seen)
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("connection reset")
		}
		return "connected", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "connected", got)
	assert.Equal(t, 2, calls)

	got, err = DoWithResult(context.Background(), fastConfig(2), func() (string, error) {
		return "partial", errors.New("connection reset")
	})
	assert.Error(t, err)
	assert.Empty(t, got)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		cfg  Config
		want bool
	}{
		{name: "nil", err: nil, cfg: DefaultConfig(), want: false},
		{name: "no patterns", err: errors.New("anything"), cfg: DefaultConfig(), want: true},
		{name: "case insensitive", err: errors.New("Connection Refused"), cfg: PostgresConfig(), want: true},
		{name: "wrapped", err: fmt.Errorf("open db: %w", errors.New("too many connections")), cfg: PostgresConfig(), want: true},
		{name: "not matching", err: errors.New("syntax error"), cfg: PostgresConfig(), want: false},
		{name: "permanent", err: Permanent(errors.New("dial tcp")), cfg: DefaultConfig(), want: false},
		{name: "redis refused", err: errors.New("dial tcp 127.0.0.1:6379: connect: connection refused"), cfg: RedisConfig(), want: true},
		{name: "redis auth", err: errors.New("NOAUTH Authentication required"), cfg: RedisConfig(), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.err, tt.cfg))
		})
	}
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}

func TestCalculateDelay(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2.0}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: -1, want: 100 * time.Millisecond},
		{attempt: 0, want: 100 * time.Millisecond},
		{attempt: 1, want: 200 * time.Millisecond},
		{attempt: 3, want: 800 * time.Millisecond},
		{attempt: 4, want: time.Second},
		{attempt: 50, want: time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt %d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.want, calculateDelay(tt.attempt, cfg))
		})
	}
}

func TestAddJitter(t *testing.T) {
	assert.Zero(t, addJitter(0))

	for range 100 {
		got := addJitter(time.Second)
		assert.GreaterOrEqual(t, got, 900*time.Millisecond)
		assert.LessOrEqual(t, got, 1100*time.Millisecond)
	}
}

func TestPresets(t *testing.T) {
	def := DefaultConfig()
	assert.Equal(t, 5, def.MaxAttempts)
	assert.Equal(t, time.Second, def.InitialDelay)
	assert.Empty(t, def.RetryableErrors)

	pg := PostgresConfig()
	assert.Equal(t, def.MaxAttempts, pg.MaxAttempts)
	assert.Equal(t, DefaultPostgresRetryableErrors(), pg.RetryableErrors)

	redis := RedisConfig()
	assert.Equal(t, 3, redis.MaxAttempts)
	assert.Less(t, redis.MaxDelay, pg.MaxDelay)
}
