package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mohith182/turbine-ai/internal/metrics"
)

// Notifier hands a freshly issued code to a delivery channel. It must not
// block on the delivery itself.
type Notifier interface {
	NotifyCode(ctx context.Context, identity, code string, ttl time.Duration)
}

type NotifierFunc func(ctx context.Context, identity, code string, ttl time.Duration)

func (f NotifierFunc) NotifyCode(ctx context.Context, identity, code string, ttl time.Duration) {
	f(ctx, identity, code, ttl)
}

type Options struct {
	TTL         time.Duration
	MaxAttempts int
	Digits      int
	Now         func() time.Time
	Rand        io.Reader
	Logger      *zap.Logger
}

type Service struct {
	store    Store
	notifier Notifier
	ttl      time.Duration
	max      int
	digits   int
	now      func() time.Time
	rand     io.Reader
	log      *zap.Logger
	locks    *keyLock
}

func NewService(store Store, notifier Notifier, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Digits <= 0 || opts.Digits > 9 {
		opts.Digits = 6
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.Reader
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		ttl:      opts.TTL,
		max:      opts.MaxAttempts,
		digits:   opts.Digits,
		now:      opts.Now,
		rand:     opts.Rand,
		log:      opts.Logger,
		locks:    newKeyLock(),
	}
}

func (s *Service) TTL() time.Duration {
	return s.ttl
}

// NormalizeIdentity lower-cases and trims an email address.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// Request issues a new code for identity, replacing any pending one, and
// hands it to the notifier. It returns once the record is stored.
func (s *Service) Request(ctx context.Context, identity string) (time.Duration, error) {
	identity = NormalizeIdentity(identity)
	if identity == "" {
		return 0, errors.New("identity is required")
	}
	code, err := s.generateCode()
	if err != nil {
		metrics.OTPRequests.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("generate code: %w", err)
	}

	unlock := s.locks.Lock(identity)
	err = s.store.Put(ctx, Record{
		Identity:  identity,
		Code:      code,
		ExpiresAt: s.now().Add(s.ttl),
		Attempts:  0,
	})
	unlock()
	if err != nil {
		metrics.OTPRequests.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("store otp: %w", err)
	}

	metrics.OTPRequests.WithLabelValues("issued").Inc()
	if s.notifier != nil {
		s.notifier.NotifyCode(ctx, identity, code, s.ttl)
	}
	s.log.Info("otp issued", zap.String("identity", identity), zap.Duration("ttl", s.ttl))
	return s.ttl, nil
}

// Verify consumes the pending code for identity. Checks run in order:
// existence, expiry, attempt limit, then the code itself. A wrong code that
// reaches the attempt limit purges the record.
func (s *Service) Verify(ctx context.Context, identity, code string) error {
	identity = NormalizeIdentity(identity)
	code = strings.TrimSpace(code)

	unlock := s.locks.Lock(identity)
	defer unlock()

	err := s.verifyLocked(ctx, identity, code)
	metrics.OTPVerifications.WithLabelValues(verifyResult(err)).Inc()
	if err != nil {
		s.log.Info("otp verify rejected", zap.String("identity", identity), zap.Error(err))
	}
	return err
}

func (s *Service) verifyLocked(ctx context.Context, identity, code string) error {
	rec, ok, err := s.store.Get(ctx, identity)
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}
	if !ok {
		return ErrNotRequested
	}
	if rec.Expired(s.now()) {
		if err := s.store.Delete(ctx, identity); err != nil {
			return fmt.Errorf("delete otp: %w", err)
		}
		return ErrExpired
	}
	if rec.Attempts >= s.max {
		if err := s.store.Delete(ctx, identity); err != nil {
			return fmt.Errorf("delete otp: %w", err)
		}
		return ErrTooManyAttempts
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(rec.Code)) != 1 {
		attempts, found, err := s.store.IncrAttempts(ctx, identity)
		if err != nil {
			return fmt.Errorf("record attempt: %w", err)
		}
		if !found {
			return ErrNotRequested
		}
		if attempts >= s.max {
			if err := s.store.Delete(ctx, identity); err != nil {
				return fmt.Errorf("delete otp: %w", err)
			}
			return ErrTooManyAttempts
		}
		return ErrInvalidCode
	}

	consumed, err := s.store.CompareAndDelete(ctx, identity, rec.Code)
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if !consumed {
		// Replaced or consumed by another process between Get and here.
		return ErrNotRequested
	}
	return nil
}

// PurgeOnce removes long-expired records from stores that lack native expiry.
func (s *Service) PurgeOnce(now time.Time) int {
	p, ok := s.store.(interface{ PurgeExpired(time.Time) int })
	if !ok {
		return 0
	}
	n := p.PurgeExpired(now)
	if n > 0 {
		s.log.Debug("otp purge", zap.Int("removed", n))
	}
	return n
}

func (s *Service) generateCode() (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(s.digits)), nil)
	n, err := rand.Int(s.rand, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", s.digits, n.Int64()), nil
}

func verifyResult(err error) string {
	switch {
	case err == nil:
		return "verified"
	case errors.Is(err, ErrNotRequested):
		return "not_requested"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrTooManyAttempts):
		return "too_many_attempts"
	case errors.Is(err, ErrInvalidCode):
		return "invalid_code"
	default:
		return "error"
	}
}
