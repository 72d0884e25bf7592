package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/shelfmark/shelfmark-go/internal/model"
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// UserRepository is the MySQL UserStore. Favourites live in a JSON column of
// the users row so a save replaces the whole set, like a document write.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// DialMySQL returns a Dialer that opens a MySQL-backed UserStore.
func DialMySQL(dsn string) Dialer {
	return func(ctx context.Context) (UserStore, error) {
		db, err := NewDB(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connecting to mysql: %w", err)
		}
		return NewUserRepository(db), nil
	}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, user_name, password_hash, email, favourites, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	favourites, err := encodeFavourites(user.Favourites)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		user.ID,
		user.UserName,
		user.PasswordHash,
		user.Email,
		favourites,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateUserName
		}
		return err
	}

	return nil
}

// GetByUserName retrieves a user by user name.
func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (*model.User, error) {
	query := `SELECT id, user_name, password_hash, email, favourites, created_at, updated_at
		FROM users WHERE user_name = ?`

	return r.scanUser(r.db.QueryRowContext(ctx, query, userName))
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT id, user_name, password_hash, email, favourites, created_at, updated_at
		FROM users WHERE id = ?`

	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// SaveFavourites replaces the favourites of the user with the given ID.
func (r *UserRepository) SaveFavourites(ctx context.Context, id string, favourites []string) error {
	query := `UPDATE users SET favourites = ?, updated_at = ? WHERE id = ?`

	encoded, err := encodeFavourites(favourites)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, encoded, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Close releases the connection pool.
func (r *UserRepository) Close(context.Context) error {
	return r.db.Close()
}

func (r *UserRepository) scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var favourites []byte
	err := row.Scan(
		&user.ID, &user.UserName, &user.PasswordHash, &user.Email,
		&favourites, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(favourites, &user.Favourites); err != nil {
		return nil, fmt.Errorf("decoding favourites of user %s: %w", user.ID, err)
	}
	if user.Favourites == nil {
		user.Favourites = []string{}
	}

	return user, nil
}

func encodeFavourites(favourites []string) ([]byte, error) {
	if favourites == nil {
		favourites = []string{}
	}
	b, err := json.Marshal(favourites)
	if err != nil {
		return nil, fmt.Errorf("encoding favourites: %w", err)
	}
	return b, nil
}

// isDuplicateEntryError checks if a MySQL error is a duplicate entry error (code 1062).
func isDuplicateEntryError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
