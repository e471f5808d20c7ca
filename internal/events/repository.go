package events

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

	"github.com/lodgelist/lodgelist/internal/core"
)

const columns = `id, destination_id, owner_id, title, slug, description, venue, starts_at, ends_at,
	capacity, lifecycle_state, moderation_state, visibility, created_at, updated_at, deleted_at`

// Repository persists events through PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository on the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanRow(row pgx.Row) (*Event, error) {
	var e Event
	err := row.Scan(
		&e.ID, &e.DestinationID, &e.OwnerID, &e.Title, &e.Slug, &e.Description, &e.Venue,
		&e.StartsAt, &e.EndsAt, &e.Capacity, &e.Lifecycle, &e.Moderation, &e.Visibility,
		&e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// FindByID returns the event or (nil, nil) when missing.
func (r *Repository) FindByID(ctx context.Context, id string) (*Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM events WHERE id = $1`, id)
	return scanRow(row)
}

// FindOne resolves a unique-field lookup over slug.
func (r *Repository) FindOne(ctx context.Context, filter core.Filter) (*Event, error) {
	if value, ok := filter["slug"]; ok {
		row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM events WHERE slug = $1`, value)
		return scanRow(row)
	}
	return nil, fmt.Errorf("events: unsupported lookup filter %v", filter)
}

func buildWhere(filter core.Filter) (string, []any) {
	conditions := []string{"deleted_at IS NULL"}
	args := []any{}

	if v, ok := filter["destination_id"]; ok {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf("destination_id = $%d", len(args)))
	}
	if v, ok := filter["owner_id"]; ok {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if v, ok := filter["upcoming"].(bool); ok && v {
		args = append(args, time.Now().UTC())
		conditions = append(conditions, fmt.Sprintf("starts_at > $%d", len(args)))
	}
	if v, ok := filter["q"].(string); ok && v != "" {
		args = append(args, "%"+v+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// FindAll lists events matching the filter, soonest first.
func (r *Repository) FindAll(ctx context.Context, filter core.Filter, page core.Page) ([]Event, int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM events %s ORDER BY starts_at ASC LIMIT $%d OFFSET $%d`,
		columns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []Event{}
	for rows.Next() {
		e, err := scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *e)
	}
	return items, total, rows.Err()
}

// Create inserts a new draft event.
func (r *Repository) Create(ctx context.Context, data CreateInput) (*Event, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (id, destination_id, owner_id, title, slug, description, venue, starts_at,
			ends_at, capacity, lifecycle_state, moderation_state, visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'DRAFT', 'PENDING', 'PUBLIC', $11, $11)
		RETURNING `+columns,
		uuid.NewString(), data.DestinationID, data.OwnerID, data.Title, data.Slug, data.Description,
		data.Venue, data.StartsAt, data.EndsAt, data.Capacity, now)
	created, err := scanRow(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, core.NewError(core.CodeAlreadyExists, "an event with this title already exists")
		}
		return nil, err
	}
	return created, nil
}

// Update applies non-nil fields and bumps updated_at.
func (r *Repository) Update(ctx context.Context, id string, data UpdateInput) (*Event, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if data.Title != nil {
		add("title", *data.Title)
	}
	if data.Description != nil {
		add("description", *data.Description)
	}
	if data.Venue != nil {
		add("venue", *data.Venue)
	}
	if data.StartsAt != nil {
		add("starts_at", *data.StartsAt)
	}
	if data.EndsAt != nil {
		add("ends_at", *data.EndsAt)
	}
	if data.Capacity != nil {
		add("capacity", *data.Capacity)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE events SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), columns)
	return scanRow(r.pool.QueryRow(ctx, query, args...))
}

// SetVisibility switches the audience scope.
func (r *Repository) SetVisibility(ctx context.Context, id string, visibility core.Visibility) (*Event, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE events SET visibility = $1, updated_at = $2 WHERE id = $3 RETURNING `+columns,
		string(visibility), time.Now().UTC(), id)
	return scanRow(row)
}

// Moderate applies an admin moderation action. Featuring events is not built
// yet; callers get NOT_IMPLEMENTED instead of a silent no-op.
func (r *Repository) Moderate(ctx context.Context, id string, action core.Action) (*Event, error) {
	var set string
	switch action {
	case core.ActionApprove:
		set = "moderation_state = 'APPROVED'"
	case core.ActionReject:
		set = "moderation_state = 'REJECTED'"
	case core.ActionPublish:
		set = "lifecycle_state = 'ACTIVE'"
	case core.ActionFeature:
		return nil, core.NewError(core.CodeNotImplemented, "featuring events is not available yet")
	default:
		return nil, fmt.Errorf("events: unsupported moderation action %q", action)
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE events SET `+set+`, updated_at = $1 WHERE id = $2 RETURNING `+columns,
		time.Now().UTC(), id)
	return scanRow(row)
}

// SoftDelete stamps deleted_at once.
func (r *Repository) SoftDelete(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// HardDelete removes the row permanently.
func (r *Repository) HardDelete(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Restore clears the soft-delete marker.
func (r *Repository) Restore(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET deleted_at = NULL, updated_at = $1 WHERE id = $2 AND deleted_at IS NOT NULL`,
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
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events `+where, args...).Scan(&total)
	return total, err
}

// PurgeDeletedBefore permanently removes events soft-deleted before the
// cutoff. The nightly purge job calls this.
func (r *Repository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE deleted_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
