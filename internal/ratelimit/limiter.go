// Package ratelimit implements fixed-window request counters on a cache store.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mohith182/turbine-ai/internal/cache"
)

var ErrLimited = errors.New("rate limit exceeded")

// LimitedError carries how long the caller should wait.
type LimitedError struct {
	Key        string
	RetryAfter time.Duration
}

func (e *LimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s", e.Key)
}

func (e *LimitedError) Unwrap() error { return ErrLimited }

type Rule struct {
	Prefix string
	Limit  int64
	Window time.Duration
}

type Limiter struct {
	Store cache.Store
}

func New(store cache.Store) *Limiter {
	return &Limiter{Store: store}
}

// Allow counts one hit for key under rule. A non-positive limit disables
// the rule.
func (l *Limiter) Allow(ctx context.Context, rule Rule, key string) error {
	if l == nil || l.Store == nil || rule.Limit <= 0 {
		return nil
	}
	full := rule.Prefix + key
	n, err := l.Store.Incr(ctx, full, rule.Window)
	if err != nil {
		return fmt.Errorf("rate limit counter: %w", err)
	}
	if n <= rule.Limit {
		return nil
	}
	retry, err := l.Store.TTL(ctx, full)
	if err != nil || retry <= 0 {
		retry = rule.Window
	}
	return &LimitedError{Key: full, RetryAfter: retry}
}

// AllowAll checks every (rule, key) pair and returns the first rejection.
// All counters are bumped even when an earlier one rejects.
func (l *Limiter) AllowAll(ctx context.Context, checks ...Check) error {
	var first error
	for _, c := range checks {
		if err := l.Allow(ctx, c.Rule, c.Key); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type Check struct {
	Rule Rule
	Key  string
}
