// Package flowcontrol implements the v5.0 submission flow control mechanism (spec §4.6): a
// token bucket gating outbound submits, smoothed by an EWMA over peer-reported congestion that
// halves or pauses the effective rate. The steady-state refill clock is golang.org/x/time/rate,
// matching the extended-stdlib rate limiter referenced from lanxingjue-smps; the congestion
// feedback loop itself has no library equivalent in the corpus and stays hand-rolled, adapted
// from the teacher's internal/flowcontrol sliding-window shape.
package flowcontrol

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrBackpressure mirrors smpp.ErrBackpressure without importing the root package (avoids an
// import cycle; the session layer re-exports this value as smpp.ErrBackpressure).
var ErrBackpressure = errors.New("smpp: flow control token unavailable and rate is zero")

const (
	congestionAlpha    = 0.3
	congestionHalveAt  = 80
	congestionPauseAt  = 95
	congestionCooldown = 30 * time.Second
)

// Limiter gates submit operations for a single v5.0 session. A nil *Limiter (which is what
// NewLimiter returns for a rate of 0) is unlimited: Acquire always returns immediately.
type Limiter struct {
	mu   sync.Mutex
	cond *sync.Cond

	baseRate float64 // configured tokens/sec; 0 means unlimited
	limiter  *rate.Limiter

	ewma    float64
	paused  bool
	halved  bool
	cooldownUntil time.Time
}

// NewLimiter builds a Limiter for maxRatePerSecond tokens/sec. A rate of 0 disables limiting
// entirely (spec §6: "max_rate_per_second: integer or unlimited").
func NewLimiter(maxRatePerSecond int) *Limiter {
	if maxRatePerSecond <= 0 {
		return nil
	}
	l := &Limiter{
		baseRate: float64(maxRatePerSecond),
		limiter:  rate.NewLimiter(rate.Limit(maxRatePerSecond), maxRatePerSecond),
	}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Acquire blocks until a token is available, the session's congestion state unpauses, or ctx is
// cancelled. A Limiter whose effective rate has been driven to zero by congestion pause (§4.6:
// ">95 pauses submission entirely") is waited on via the congestion-state condition variable
// rather than the token bucket, since x/time/rate.Limiter has no notion of a paused state.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	for l.paused {
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				l.cond.Broadcast()
			case <-done:
			}
		}()
		l.cond.Wait()
		close(done)
		if err := ctx.Err(); err != nil {
			l.mu.Unlock()
			return err
		}
	}
	lim := l.limiter
	l.mu.Unlock()
	if err := lim.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// rate.Limiter.Wait fails without a ctx error when the bucket can never grant the
		// token before the deadline, e.g. the congestion pause drove the limit to zero.
		return ErrBackpressure
	}
	return nil
}

// ReportCongestion feeds a peer-reported congestion sample (0-100, from the congestion_state TLV
// or 100 when the peer returned ESME_RTHROTTLED) into the EWMA and updates the effective rate.
func (l *Limiter) ReportCongestion(sample uint8) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ewma = congestionAlpha*float64(sample) + (1-congestionAlpha)*l.ewma

	switch {
	case l.ewma > congestionPauseAt:
		if !l.paused {
			l.paused = true
			l.limiter.SetLimit(0)
		}
	case l.ewma > congestionHalveAt:
		// A paused limiter stays paused until the smoothed value drops below 80, not 95.
		if l.paused {
			return
		}
		l.halved = true
		l.limiter.SetLimit(rate.Limit(l.baseRate / 2))
		l.cooldownUntil = time.Now().Add(congestionCooldown)
	default:
		if l.paused {
			// Resume at the halved rate and restart the cooldown rather than jumping straight
			// back to full speed off the back of a congestion episode.
			l.paused = false
			l.halved = true
			l.cooldownUntil = time.Now().Add(congestionCooldown)
			l.limiter.SetLimit(rate.Limit(l.baseRate / 2))
			l.cond.Broadcast()
			return
		}
		if l.halved && time.Now().After(l.cooldownUntil) {
			l.halved = false
			l.limiter.SetLimit(rate.Limit(l.baseRate))
		}
	}
}

// Congestion returns the current smoothed congestion sample, for metrics/diagnostics.
func (l *Limiter) Congestion() float64 {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ewma
}

// Paused reports whether submission is currently halted by congestion pause.
func (l *Limiter) Paused() bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}
