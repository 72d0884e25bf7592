package crypto

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// BcryptCost is the work factor applied to every stored password.
const BcryptCost = 10

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var (
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// Hasher hashes and verifies passwords with bcrypt. bcrypt is CPU bound, so
// at most a fixed number of hash or compare operations run at once; callers
// beyond that wait for a slot or for their context to end.
type Hasher struct {
	cost  int
	slots *semaphore.Weighted

	// dummyHash is compared against when the account does not exist so that
	// unknown and known user names cost the same.
	dummyHash []byte
}

// NewHasher creates a Hasher allowing workers concurrent operations.
// workers <= 0 means runtime.GOMAXPROCS(0).
func NewHasher(workers int) (*Hasher, error) {
	return newHasher(BcryptCost, workers)
}

func newHasher(cost, workers int) (*Hasher, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("shelfmark-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("generating dummy hash: %w", err)
	}

	return &Hasher{
		cost:      cost,
		slots:     semaphore.NewWeighted(int64(workers)),
		dummyHash: dummy,
	}, nil
}

// Hash returns the salted bcrypt hash of password.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.slots.Release(1)

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether password matches hash. A mismatch is (false, nil);
// a malformed hash is an error.
func (h *Hasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.slots.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// VerifyDummy performs a comparison that always fails, used in place of
// Verify when there is no stored hash.
func (h *Hasher) VerifyDummy(ctx context.Context, password string) error {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer h.slots.Release(1)

	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
	return nil
}
