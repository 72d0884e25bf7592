package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-go/internal/crypto"
	"github.com/shelfmark/shelfmark-go/internal/model"
	"github.com/shelfmark/shelfmark-go/internal/repository"
)

var errStoreDown = errors.New("store unavailable")

// failingStore wraps a UserStore and fails selected operations.
type failingStore struct {
	repository.UserStore
	failCreate bool
	failGet    bool
	failSave   bool
	saveErr    error
}

func (s *failingStore) Create(ctx context.Context, u *model.User) error {
	if s.failCreate {
		return errStoreDown
	}
	return s.UserStore.Create(ctx, u)
}

func (s *failingStore) GetByUserName(ctx context.Context, name string) (*model.User, error) {
	if s.failGet {
		return nil, errStoreDown
	}
	return s.UserStore.GetByUserName(ctx, name)
}

func (s *failingStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	if s.failGet {
		return nil, errStoreDown
	}
	return s.UserStore.GetByID(ctx, id)
}

func (s *failingStore) SaveFavourites(ctx context.Context, id string, favourites []string) error {
	if s.failSave {
		if s.saveErr != nil {
			return s.saveErr
		}
		return errStoreDown
	}
	return s.UserStore.SaveFavourites(ctx, id, favourites)
}

func newTestHasher(t *testing.T) *crypto.Hasher {
	t.Helper()
	h, err := crypto.NewHasher(4)
	require.NoError(t, err)
	return h
}

func newTestIssuer(t *testing.T, opts ...crypto.TokenOption) *crypto.TokenIssuer {
	t.Helper()
	issuer, err := crypto.NewTokenIssuer("test-secret", opts...)
	require.NoError(t, err)
	return issuer
}

func newTestAuthService(t *testing.T, store repository.UserStore) *AuthService {
	t.Helper()
	svc := NewAuthService(store, newTestHasher(t), newTestIssuer(t))
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

// registerUser registers a user and returns its stored ID.
func registerUser(t *testing.T, svc *AuthService, store repository.UserStore, name, password string) string {
	t.Helper()
	_, err := svc.Register(context.Background(), model.RegisterRequest{
		UserName:  name,
		Password:  password,
		Password2: password,
	})
	require.NoError(t, err)

	u, err := store.GetByUserName(context.Background(), name)
	require.NoError(t, err)
	return u.ID
}
