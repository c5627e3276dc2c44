// Package errorrecovery retries the initial TCP dial for connect_and_bind (spec §6), using
// cenkalti/backoff/v4 in place of the teacher's hand-rolled exponential-backoff loop.
package errorrecovery

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DialConfig bounds how long and how many times a dial is retried before giving up.
type DialConfig struct {
	MaxElapsedTime  time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultDialConfig mirrors the teacher's previous defaults (100ms initial, 30s cap).
func DefaultDialConfig() DialConfig {
	return DialConfig{
		MaxElapsedTime:  30 * time.Second,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Dial retries dial (typically net.Dialer.DialContext) with exponential backoff until it
// succeeds, ctx is cancelled, or cfg.MaxElapsedTime is exceeded.
func Dial[T any](ctx context.Context, cfg DialConfig, dial func(context.Context) (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialInterval
	b.MaxInterval = cfg.MaxInterval
	b.MaxElapsedTime = cfg.MaxElapsedTime

	var result T
	operation := func() error {
		var err error
		result, err = dial(ctx)
		return err
	}
	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	return result, err
}
