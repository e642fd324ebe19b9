// Package poll repeats a check with exponential backoff until it reports
// done, an error occurs or attempts run out. It respects context cancellation.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned when every attempt ran without the check finishing.
var ErrExhausted = errors.New("poll: attempts exhausted")

// Config holds polling configuration.
type Config struct {
	MaxAttempts  int           // Maximum number of checks (including the first)
	InitialDelay time.Duration // Delay after the first unfinished check
	MaxDelay     time.Duration // Upper bound on the delay between checks
	Multiplier   float64       // Growth factor of the delay
}

// DefaultConfig suits waiting on a cluster confirmation.
var DefaultConfig = Config{
	MaxAttempts:  30,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     4 * time.Second,
	Multiplier:   1.5,
}

// Check runs once per attempt. done reports whether polling can stop; an
// error stops polling immediately and is returned as is.
type Check[T any] func(ctx context.Context) (result T, done bool, err error)

// Until runs check until it is done. The last unfinished result is returned
// together with ErrExhausted when attempts run out.
func Until[T any](ctx context.Context, config Config, check Check[T]) (T, error) {
	var last T
	delay := config.InitialDelay
	attempts := config.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return last, fmt.Errorf("context cancelled: %w", err)
		}

		result, done, err := check(ctx)
		if err != nil {
			return result, err
		}
		last = result
		if done {
			return result, nil
		}

		// Don't sleep after last attempt
		if attempt < attempts-1 {
			select {
			case <-time.After(delay):
				delay = next(delay, config)
			case <-ctx.Done():
				return last, ctx.Err()
			}
		}
	}

	return last, fmt.Errorf("%w after %d checks", ErrExhausted, attempts)
}

func next(delay time.Duration, config Config) time.Duration {
	if config.Multiplier > 1 {
		delay = time.Duration(float64(delay) * config.Multiplier)
	}
	if config.MaxDelay > 0 && delay > config.MaxDelay {
		delay = config.MaxDelay
	}
	return delay
}
