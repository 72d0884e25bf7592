package repository

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/shelfmark/shelfmark-go/internal/model"
)

// Dialer opens a connected UserStore.
type Dialer func(ctx context.Context) (UserStore, error)

// Lazy is a UserStore that connects on first use and then reuses the
// connection for the life of the process. Concurrent first callers share a
// single in-flight dial. A failed dial is not remembered: the next caller
// dials again.
type Lazy struct {
	dial  Dialer
	group singleflight.Group

	mu    sync.RWMutex
	store UserStore
}

// NewLazy creates a Lazy store around dial. No connection is made until Connect
// or the first store operation.
func NewLazy(dial Dialer) *Lazy {
	return &Lazy{dial: dial}
}

// Connect returns the connected store, dialing if no connection exists yet.
// A caller whose ctx ends while waiting gets ctx.Err(); the shared dial keeps
// going for the other waiters.
func (l *Lazy) Connect(ctx context.Context) (UserStore, error) {
	if s := l.current(); s != nil {
		return s, nil
	}

	ch := l.group.DoChan("connect", func() (any, error) {
		if s := l.current(); s != nil {
			return s, nil
		}

		s, err := l.dial(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.store = s
		l.mu.Unlock()
		return s, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(UserStore), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close closes the underlying connection if one was made.
func (l *Lazy) Close(ctx context.Context) error {
	l.mu.Lock()
	s := l.store
	l.store = nil
	l.mu.Unlock()

	if c, ok := s.(closer); ok {
		return c.Close(ctx)
	}
	return nil
}

func (l *Lazy) current() UserStore {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store
}

func (l *Lazy) Create(ctx context.Context, user *model.User) error {
	s, err := l.Connect(ctx)
	if err != nil {
		return err
	}
	return s.Create(ctx, user)
}

func (l *Lazy) GetByUserName(ctx context.Context, userName string) (*model.User, error) {
	s, err := l.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetByUserName(ctx, userName)
}

func (l *Lazy) GetByID(ctx context.Context, id string) (*model.User, error) {
	s, err := l.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (l *Lazy) SaveFavourites(ctx context.Context, id string, favourites []string) error {
	s, err := l.Connect(ctx)
	if err != nil {
		return err
	}
	return s.SaveFavourites(ctx, id, favourites)
}
