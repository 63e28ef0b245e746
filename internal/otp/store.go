// Package otp implements the one-time passcode lifecycle: issue, verify with
// an attempt limit, and single-use consumption.
package otp

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotRequested    = errors.New("otp not requested")
	ErrExpired         = errors.New("otp expired")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrInvalidCode     = errors.New("invalid otp")
)

// Record is the pending code for one identity. At most one exists per identity.
type Record struct {
	Identity  string    `json:"identity"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

func (r Record) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Store persists pending records keyed by identity. Implementations must not
// drop a record before its ExpiresAt, so that expiry can be reported as such.
type Store interface {
	Get(ctx context.Context, identity string) (Record, bool, error)
	// Put creates or overwrites the record for rec.Identity.
	Put(ctx context.Context, rec Record) error
	Delete(ctx context.Context, identity string) error
	// IncrAttempts bumps the attempt counter and returns the new value.
	// found is false when no record exists.
	IncrAttempts(ctx context.Context, identity string) (attempts int, found bool, err error)
	// CompareAndDelete removes the record only when its code equals code.
	CompareAndDelete(ctx context.Context, identity, code string) (bool, error)
}

// retention is how long stores with native expiry keep a record past
// ExpiresAt, long enough for a late verify to see ErrExpired.
const retention = 10 * time.Minute
