package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/octobees/agrimarket/api/internal/entity"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup criteria.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailDuplicate is returned when the email is already registered.
	ErrEmailDuplicate = errors.New("email already exists")
)

const (
	uniqueViolation    = "23505"
	usersEmailKey      = "users_email_key"
	userColumns        = `id, email, password_hash, role, phone_number, location, preferred_language, verified, created_at, updated_at`
	insertUserQuery    = `INSERT INTO users (email, password_hash, role, phone_number, location, preferred_language) VALUES ($1, $2, $3, $4, $5, $6) RETURNING ` + userColumns
	selectUserByEmail  = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	selectUserByID     = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	selectUsersOrdered = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	updateUserVerified = `UPDATE users SET verified = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + userColumns
)

// DB is the subset of *pgxpool.Pool the repositories rely on.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// NewAccount bundles the rows written by a single registration. At most one
// profile is set.
type NewAccount struct {
	User   entity.User
	Farmer *entity.FarmerProfile
	Buyer  *entity.BuyerProfile
}

// UsersRepository declares persistence operations for accounts.
type UsersRepository interface {
	Create(ctx context.Context, account NewAccount) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindFarmerProfile(ctx context.Context, userID uuid.UUID) (*entity.FarmerProfile, error)
	FindBuyerProfile(ctx context.Context, userID uuid.UUID) (*entity.BuyerProfile, error)
	List(ctx context.Context) ([]entity.User, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) (*entity.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGXUsersRepository implements UsersRepository with pgx.
type PGXUsersRepository struct {
	pool DB
}

// NewPGXUsersRepository instantiates a users repository.
func NewPGXUsersRepository(pool DB) *PGXUsersRepository {
	return &PGXUsersRepository{pool: pool}
}

// Create inserts the user and its profile in one transaction.
func (r *PGXUsersRepository) Create(ctx context.Context, account NewAccount) (_ *entity.User, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin registration tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	u := account.User
	user, err := scanUser(tx.QueryRow(ctx, insertUserQuery, u.Email, u.PasswordHash, u.Role, u.PhoneNumber, u.Location, u.PreferredLanguage))
	if err != nil {
		if isUniqueViolation(err, usersEmailKey) {
			return nil, fmt.Errorf("%w: %v", ErrEmailDuplicate, err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if account.Farmer != nil {
		if err := insertFarmerProfile(ctx, tx, user.ID, account.Farmer); err != nil {
			return nil, err
		}
	}
	if account.Buyer != nil {
		if err := insertBuyerProfile(ctx, tx, user.ID, account.Buyer); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit registration tx: %w", err)
	}
	return user, nil
}

// FindByEmail fetches a user by email if present.
func (r *PGXUsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, selectUserByEmail, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by identifier.
func (r *PGXUsersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, selectUserByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

// List returns all users ordered by creation date (desc).
func (r *PGXUsersRepository) List(ctx context.Context) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, selectUsersOrdered)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// SetVerified flips the verified flag of an account.
func (r *PGXUsersRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) (*entity.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, updateUserVerified, verified, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user verified: %w", err)
	}
	return user, nil
}

// Delete removes a user by id. Profiles go with it through ON DELETE CASCADE.
func (r *PGXUsersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.PhoneNumber,
		&user.Location,
		&user.PreferredLanguage,
		&user.Verified,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}
