package repository

import (
	"context"
	"errors"

	"github.com/shelfmark/shelfmark-go/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUserName = errors.New("user name already exists")
)

// UserStore persists user records. Implementations enforce user name
// uniqueness on insert and report a violation as ErrDuplicateUserName.
type UserStore interface {
	// Create inserts a new user. The caller sets ID and timestamps.
	Create(ctx context.Context, user *model.User) error

	// GetByUserName returns ErrUserNotFound when no user matches.
	GetByUserName(ctx context.Context, userName string) (*model.User, error)

	// GetByID returns ErrUserNotFound when no user matches.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// SaveFavourites overwrites the favourites of a user.
	SaveFavourites(ctx context.Context, id string, favourites []string) error
}

// closer is implemented by stores holding a connection.
type closer interface {
	Close(ctx context.Context) error
}
