package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/user"
)

type userRow struct {
	ID           int         `db:"id"`
	Username     string      `db:"username"`
	Email        string      `db:"email"`
	PasswordHash []byte      `db:"password_hash"`
	Role         string      `db:"role"`
	FirstName    null.String `db:"first_name"`
	LastName     null.String `db:"last_name"`
	AvatarURL    null.String `db:"avatar_url"`
	IsActive     null.Bool   `db:"is_active"`
	CreatedAt    time.Time   `db:"created_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func (row userRow) unpack() user.User {
	return user.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		FirstName:    row.FirstName.String,
		LastName:     row.LastName.String,
		AvatarURL:    row.AvatarURL.String,
		Role:         row.Role,
		IsActive:     row.IsActive.Ptr(),
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		LastLogin:    row.LastLogin.Time,
	}
}

type userRepository struct {
	repository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{repository{exec: exec}}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	excludedIDs := make([]int, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		excludedIDs = append(excludedIDs, usr.ID)
	}

	var taken struct {
		Username bool `db:"username_taken"`
		Email    bool `db:"email_taken"`
	}
	err := repo.getExec(exec).GetContext(ctx, &taken, `
		SELECT COALESCE(bool_or(lower(username) = lower($1)), false) AS username_taken,
		       COALESCE(bool_or(lower(email) = lower($2)), false) AS email_taken
		FROM users
		WHERE (lower(username) = lower($1) OR lower(email) = lower($2)) AND id != ALL($3)`,
		username, email, pq.Array(excludedIDs),
	)
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}

	switch {
	case taken.Username && taken.Email:
		return user.ErrUserExists
	case taken.Username:
		return user.ErrUsernameExists
	case taken.Email:
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	var row userRow
	err := repo.getExec(exec).GetContext(ctx, &row, `
		INSERT INTO users (username, email, password_hash, role, first_name, last_name, avatar_url, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING *`,
		usr.Username, usr.Email, usr.PasswordHash, usr.Role,
		null.NewString(usr.FirstName, usr.FirstName != ""),
		null.NewString(usr.LastName, usr.LastName != ""),
		null.NewString(usr.AvatarURL, usr.AvatarURL != ""),
		null.BoolFromPtr(usr.IsActive),
		usr.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(errors.Cause(err)) {
			return user.User{}, user.ErrUserExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return row.unpack(), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	query := `
		SELECT * FROM users
		WHERE ($1 = '' OR username ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
		       OR first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR role = $2)
		  AND ($3::boolean IS NULL OR is_active = $3)
		  AND ($4::timestamp IS NULL OR created_at >= $4)
		  AND ($5::timestamp IS NULL OR created_at <= $5)`

	var search, role string
	var isActive null.Bool
	var createdFrom, createdTo null.Time
	if filter != nil {
		search = filter.Search
		role = filter.Role
		isActive = null.BoolFromPtr(filter.IsActive)
		createdFrom = null.NewTime(filter.CreatedFrom.UTC(), !filter.CreatedFrom.IsZero())
		createdTo = null.NewTime(filter.CreatedTo.UTC(), !filter.CreatedTo.IsZero())
	}

	var rows []userRow
	err := repo.getExec(exec).SelectContext(ctx, &rows, query+orderBy(ordering), search, role, isActive, createdFrom, createdTo)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.unpack())
	}
	return users, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	var row userRow
	var err error
	exe := repo.getExec(exec)

	switch {
	case filter.ID != 0:
		err = exe.GetContext(ctx, &row, `SELECT * FROM users WHERE id = $1`, filter.ID)
	case filter.Username != "":
		err = exe.GetContext(ctx, &row, `SELECT * FROM users WHERE lower(username) = lower($1)`, filter.Username)
	case filter.Email != "":
		err = exe.GetContext(ctx, &row, `SELECT * FROM users WHERE lower(email) = lower($1)`, filter.Email)
	case filter.UsernameOrEmail != "":
		err = exe.GetContext(ctx, &row,
			`SELECT * FROM users WHERE lower(username) = lower($1) OR lower(email) = lower($1)`, filter.UsernameOrEmail)
	default:
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return row.unpack(), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	var row userRow
	err := repo.getExec(exec).GetContext(ctx, &row, `
		UPDATE users
		SET username = $2, email = $3, password_hash = $4, role = $5, first_name = $6,
		    last_name = $7, avatar_url = $8, is_active = $9, last_login = $10
		WHERE id = $1
		RETURNING *`,
		usr.ID, usr.Username, usr.Email, usr.PasswordHash, usr.Role,
		null.NewString(usr.FirstName, usr.FirstName != ""),
		null.NewString(usr.LastName, usr.LastName != ""),
		null.NewString(usr.AvatarURL, usr.AvatarURL != ""),
		null.BoolFromPtr(usr.IsActive),
		null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		if isUniqueViolation(errors.Cause(err)) {
			return user.User{}, user.ErrUserExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return row.unpack(), nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error) {
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM users WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(cnt), nil
}
