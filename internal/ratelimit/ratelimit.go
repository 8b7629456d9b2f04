// Package ratelimit paces outbound requests so remote publications are never
// hammered. Spacing is deliberately uneven: a minimum inter-request delay
// plus random jitter, with a longer cooldown after every batch of requests.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Pacer is consulted before every outbound fetch. Implementations must be
// safe for concurrent use even though the pipeline itself is sequential.
type Pacer interface {
	// Wait blocks until the next request is allowed to go out.
	Wait(ctx context.Context) error
	// PublicationPause inserts the longer pause between publications.
	PublicationPause(ctx context.Context) error
	// RequestCount reports how many requests have been paced so far.
	RequestCount() int
}

// Policy holds the delay knobs for a RequestPacer.
type Policy struct {
	MinDelay      time.Duration // floor between consecutive requests
	MaxJitter     time.Duration // random extra delay on top of MinDelay
	CooldownEvery int           // requests between long cooldowns (0 = never)
	CooldownMin   time.Duration
	CooldownMax   time.Duration
	PubPauseMin   time.Duration // pause between publications
	PubPauseMax   time.Duration
}

// DefaultPolicy mirrors the production pacing: 2s floor, up to 3s jitter,
// a 5-10s cooldown every 20 requests and 3-6s between publications.
func DefaultPolicy() Policy {
	return Policy{
		MinDelay:      2 * time.Second,
		MaxJitter:     3 * time.Second,
		CooldownEvery: 20,
		CooldownMin:   5 * time.Second,
		CooldownMax:   10 * time.Second,
		PubPauseMin:   3 * time.Second,
		PubPauseMax:   6 * time.Second,
	}
}

// RequestPacer implements Pacer with mutex-protected state.
type RequestPacer struct {
	mu       sync.Mutex
	policy   Policy
	count    int
	lastSent time.Time
}

func NewRequestPacer(policy Policy) *RequestPacer {
	return &RequestPacer{policy: policy}
}

func (p *RequestPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	delay := time.Duration(0)
	if !p.lastSent.IsZero() {
		if since := now.Sub(p.lastSent); since < p.policy.MinDelay {
			delay = p.policy.MinDelay - since
		}
	}
	if p.policy.MaxJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(p.policy.MaxJitter)))
	}

	p.count++
	if p.policy.CooldownEvery > 0 && p.count%p.policy.CooldownEvery == 0 {
		delay += randomBetween(p.policy.CooldownMin, p.policy.CooldownMax)
	}
	p.lastSent = now.Add(delay)
	p.mu.Unlock()

	return sleep(ctx, delay)
}

func (p *RequestPacer) PublicationPause(ctx context.Context) error {
	return sleep(ctx, randomBetween(p.policy.PubPauseMin, p.policy.PubPauseMax))
}

func (p *RequestPacer) RequestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// NopPacer skips all delays. Tests inject it so pipeline runs are instant.
type NopPacer struct {
	mu    sync.Mutex
	count int
}

func (n *NopPacer) Wait(ctx context.Context) error {
	n.mu.Lock()
	n.count++
	n.mu.Unlock()
	return ctx.Err()
}

func (n *NopPacer) PublicationPause(ctx context.Context) error { return ctx.Err() }

func (n *NopPacer) RequestCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

func randomBetween(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
