package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodgelist/lodgelist/internal/auth"
	"github.com/lodgelist/lodgelist/internal/core"
)

const columns = `id, email, name, role, password_hash, active, lifecycle_state, moderation_state,
	visibility, created_at, updated_at, deleted_at`

// Repository persists accounts through PostgreSQL. Besides core.Model it
// implements auth.CredentialStore for the login flow.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository on the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanRow(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.Active,
		&u.Lifecycle, &u.Moderation, &u.Visibility, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// FindByID returns the account or (nil, nil) when missing.
func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM users WHERE id = $1`, id)
	return scanRow(row)
}

// FindOne resolves a unique-field lookup over email.
func (r *Repository) FindOne(ctx context.Context, filter core.Filter) (*User, error) {
	if value, ok := filter["email"]; ok {
		row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM users WHERE email = $1`, value)
		return scanRow(row)
	}
	return nil, fmt.Errorf("users: unsupported lookup filter %v", filter)
}

// FindCredentialsByEmail implements auth.CredentialStore. Soft-deleted
// accounts cannot log in.
func (r *Repository) FindCredentialsByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, role, active FROM users
		WHERE email = $1 AND deleted_at IS NULL`, email)
	var creds auth.Credentials
	if err := row.Scan(&creds.UserID, &creds.Email, &creds.PasswordHash, &creds.Role, &creds.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &creds, nil
}

func buildWhere(filter core.Filter) (string, []any) {
	conditions := []string{"deleted_at IS NULL"}
	args := []any{}

	if v, ok := filter["role"]; ok {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if v, ok := filter["active"]; ok {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	if v, ok := filter["q"].(string); ok && v != "" {
		args = append(args, "%"+v+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// FindAll lists accounts matching the filter.
func (r *Repository) FindAll(ctx context.Context, filter core.Filter, page core.Page) ([]User, int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		columns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []User{}
	for rows.Next() {
		u, err := scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *u)
	}
	return items, total, rows.Err()
}

// Create inserts a new active account. A duplicate email surfaces as
// ALREADY_EXISTS.
func (r *Repository) Create(ctx context.Context, data CreateInput) (*User, error) {
	role := data.Role
	if role == "" {
		role = string(core.RoleUser)
	}
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name, role, password_hash, active, lifecycle_state,
			moderation_state, visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, 'ACTIVE', 'APPROVED', 'PRIVATE', $6, $6)
		RETURNING `+columns,
		uuid.NewString(), strings.ToLower(data.Email), data.Name, role, data.PasswordHash, now)
	created, err := scanRow(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, core.NewError(core.CodeAlreadyExists, "an account with this email already exists")
		}
		return nil, err
	}
	return created, nil
}

// Update applies non-nil fields and bumps updated_at.
func (r *Repository) Update(ctx context.Context, id string, data UpdateInput) (*User, error) {
	if data.Name == nil {
		return r.FindByID(ctx, id)
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET name = $1, updated_at = $2 WHERE id = $3 RETURNING `+columns,
		*data.Name, time.Now().UTC(), id)
	return scanRow(row)
}

// SetVisibility switches the profile's audience scope.
func (r *Repository) SetVisibility(ctx context.Context, id string, visibility core.Visibility) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET visibility = $1, updated_at = $2 WHERE id = $3 RETURNING `+columns,
		string(visibility), time.Now().UTC(), id)
	return scanRow(row)
}

// Moderate applies an admin action; accounts only support suspension via
// reject and reinstatement via approve.
func (r *Repository) Moderate(ctx context.Context, id string, action core.Action) (*User, error) {
	var set string
	switch action {
	case core.ActionApprove:
		set = "moderation_state = 'APPROVED', active = TRUE"
	case core.ActionReject:
		set = "moderation_state = 'REJECTED', active = FALSE"
	default:
		return nil, fmt.Errorf("users: unsupported moderation action %q", action)
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET `+set+`, updated_at = $1 WHERE id = $2 RETURNING `+columns,
		time.Now().UTC(), id)
	return scanRow(row)
}

// SoftDelete stamps deleted_at once and deactivates the account.
func (r *Repository) SoftDelete(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET deleted_at = $1, active = FALSE WHERE id = $2 AND deleted_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// HardDelete removes the row permanently.
func (r *Repository) HardDelete(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Restore clears the soft-delete marker and reactivates the account.
func (r *Repository) Restore(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET deleted_at = NULL, active = TRUE, updated_at = $1
		 WHERE id = $2 AND deleted_at IS NOT NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Count reports matching live rows.
func (r *Repository) Count(ctx context.Context, filter core.Filter) (int64, error) {
	where, args := buildWhere(filter)
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users `+where, args...).Scan(&total)
	return total, err
}
