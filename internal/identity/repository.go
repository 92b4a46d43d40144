package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

const uniqueViolation = "23505"

// Repository persists users.
type Repository interface {
	UpsertByFirebaseUID(ctx context.Context, in SyncInput) (User, error)
	Create(ctx context.Context, user User) error
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY,
    firebase_uid  TEXT UNIQUE,
    email         TEXT UNIQUE,
    phone         TEXT,
    first_name    TEXT NOT NULL,
    last_name     TEXT NOT NULL,
    role          TEXT NOT NULL,
    status        TEXT NOT NULL,
    agency_id     TEXT,
    password_hash BYTEA,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
)`

// EnsureSchema creates the users table and its unique indexes when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, schema)
	return err
}

const userColumns = `id, firebase_uid, email, phone, first_name, last_name, role, status, agency_id, password_hash, created_at, updated_at`

// UpsertByFirebaseUID inserts a PENDING user or refreshes the profile fields
// of the existing one in a single statement. Role, status and agency are only
// written on insert.
func (r *PostgresRepository) UpsertByFirebaseUID(ctx context.Context, in SyncInput) (User, error) {
	now := time.Now().UTC()
	row := r.db.QueryRow(ctx, `INSERT INTO users (id, firebase_uid, email, phone, first_name, last_name, role, status, agency_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
        ON CONFLICT (firebase_uid) DO UPDATE SET
            email = EXCLUDED.email,
            phone = EXCLUDED.phone,
            first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            updated_at = EXCLUDED.updated_at
        RETURNING `+userColumns,
		uuid.New(), in.FirebaseUID, nullable(in.Email), nullable(in.Phone), in.FirstName, in.LastName,
		in.Role, StatusPending, nullable(in.AgencyID), now)
	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return user, nil
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, firebase_uid, email, phone, first_name, last_name, role, status, agency_id, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		userID, nullable(user.FirebaseUID), nullable(user.Email), nullable(user.Phone), user.FirstName, user.LastName,
		user.Role, user.Status, nullable(user.AgencyID), user.PasswordHash, user.CreatedAt.UTC(), user.UpdatedAt.UTC())
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// FindByEmail fetches a user by email address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// FindByID fetches a user by primary key.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrUserNotFound
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return user, err
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id                                  uuid.UUID
		firebaseUID, email, phone, agencyID *string
		user                                User
	)
	if err := row.Scan(&id, &firebaseUID, &email, &phone, &user.FirstName, &user.LastName,
		&user.Role, &user.Status, &agencyID, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return User{}, err
	}
	user.ID = id.String()
	user.FirebaseUID = deref(firebaseUID)
	user.Email = deref(email)
	user.Phone = deref(phone)
	user.AgencyID = deref(agencyID)
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
