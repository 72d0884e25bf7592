package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/shelfmark/shelfmark-go/internal/model"
)

// MemoryUserRepository is an in-process UserStore. Records are copied on the
// way in and out so callers never share slices with the store.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	byID   map[string]*model.User
	byName map[string]string
}

// NewMemoryUserRepository creates an empty MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:   make(map[string]*model.User),
		byName: make(map[string]string),
	}
}

// DialMemory returns a Dialer that hands out the given repository.
func DialMemory(r *MemoryUserRepository) Dialer {
	return func(context.Context) (UserStore, error) {
		return r, nil
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[user.UserName]; exists {
		return ErrDuplicateUserName
	}

	stored := cloneUser(user)
	if stored.Favourites == nil {
		stored.Favourites = []string{}
	}
	r.byID[stored.ID] = stored
	r.byName[stored.UserName] = stored.ID
	return nil
}

func (r *MemoryUserRepository) GetByUserName(_ context.Context, userName string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[userName]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *MemoryUserRepository) SaveFavourites(_ context.Context, id string, favourites []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	user.Favourites = slices.Clone(favourites)
	if user.Favourites == nil {
		user.Favourites = []string{}
	}
	return nil
}

func cloneUser(u *model.User) *model.User {
	c := *u
	c.Favourites = slices.Clone(u.Favourites)
	return &c
}
