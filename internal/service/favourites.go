package service

import (
	"context"
	"errors"
	"slices"

	"github.com/shelfmark/shelfmark-go/internal/apperr"
	"github.com/shelfmark/shelfmark-go/internal/logging"
	"github.com/shelfmark/shelfmark-go/internal/metrics"
	"github.com/shelfmark/shelfmark-go/internal/repository"
)

const MsgItemIDRequired = "favourite id is required."

// FavouritesService reads and mutates a user's favourites. Add and Remove are
// idempotent. Concurrent mutations of one user are not serialised: each is a
// read followed by a whole-list write, so the last write wins.
type FavouritesService struct {
	repo repository.UserStore
}

// NewFavouritesService creates a new FavouritesService.
func NewFavouritesService(repo repository.UserStore) *FavouritesService {
	return &FavouritesService{repo: repo}
}

// List returns the favourites of the user in insertion order.
func (s *FavouritesService) List(ctx context.Context, userID string) ([]string, error) {
	return s.load(ctx, userID)
}

// Add appends itemID unless it is already present.
func (s *FavouritesService) Add(ctx context.Context, userID, itemID string) ([]string, error) {
	if itemID == "" {
		return nil, apperr.Validation(MsgItemIDRequired)
	}

	favourites, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if slices.Contains(favourites, itemID) {
		metrics.RecordFavouriteMutation(metrics.OpAdd, metrics.StatusUnchanged)
		return favourites, nil
	}

	favourites = append(favourites, itemID)
	if err := s.save(ctx, userID, favourites); err != nil {
		metrics.RecordFavouriteMutation(metrics.OpAdd, metrics.StatusError)
		return nil, err
	}

	metrics.RecordFavouriteMutation(metrics.OpAdd, metrics.StatusSuccess)
	return favourites, nil
}

// Remove deletes itemID. Removing an absent id is not an error.
func (s *FavouritesService) Remove(ctx context.Context, userID, itemID string) ([]string, error) {
	favourites, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(favourites, itemID) {
		metrics.RecordFavouriteMutation(metrics.OpRemove, metrics.StatusUnchanged)
		return favourites, nil
	}

	favourites = slices.DeleteFunc(favourites, func(f string) bool { return f == itemID })
	if err := s.save(ctx, userID, favourites); err != nil {
		metrics.RecordFavouriteMutation(metrics.OpRemove, metrics.StatusError)
		return nil, err
	}

	metrics.RecordFavouriteMutation(metrics.OpRemove, metrics.StatusSuccess)
	return favourites, nil
}

func (s *FavouritesService) load(ctx context.Context, userID string) ([]string, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound(MsgUserNotFound)
		}
		err = apperr.Persistence(err, "get user by id", "user_id", userID)
		logging.Error(ctx, "loading favourites failed", err)
		return nil, err
	}
	if user.Favourites == nil {
		return []string{}, nil
	}
	return user.Favourites, nil
}

func (s *FavouritesService) save(ctx context.Context, userID string, favourites []string) error {
	err := s.repo.SaveFavourites(ctx, userID, favourites)
	if err == nil {
		return nil
	}
	// The user can disappear between load and save.
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperr.NotFound(MsgUserNotFound)
	}
	err = apperr.Persistence(err, "save favourites", "user_id", userID)
	logging.Error(ctx, "saving favourites failed", err)
	return err
}
