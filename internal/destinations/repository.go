package destinations

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

const columns = `id, name, slug, country, region, description, accommodation_count,
	lifecycle_state, moderation_state, visibility, featured, created_at, updated_at, deleted_at`

// Repository persists destinations through PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository on the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanRow(row pgx.Row) (*Destination, error) {
	var d Destination
	err := row.Scan(
		&d.ID, &d.Name, &d.Slug, &d.Country, &d.Region, &d.Description, &d.AccommodationCount,
		&d.Lifecycle, &d.Moderation, &d.Visibility, &d.Featured, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// FindByID returns the destination or (nil, nil) when missing.
func (r *Repository) FindByID(ctx context.Context, id string) (*Destination, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM destinations WHERE id = $1`, id)
	return scanRow(row)
}

// FindOne resolves a unique-field lookup over slug or name.
func (r *Repository) FindOne(ctx context.Context, filter core.Filter) (*Destination, error) {
	for _, field := range []string{"slug", "name"} {
		if value, ok := filter[field]; ok {
			row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM destinations WHERE `+field+` = $1`, value)
			return scanRow(row)
		}
	}
	return nil, fmt.Errorf("destinations: unsupported lookup filter %v", filter)
}

func buildWhere(filter core.Filter) (string, []any) {
	conditions := []string{"deleted_at IS NULL"}
	args := []any{}

	if v, ok := filter["country"]; ok {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf("country = $%d", len(args)))
	}
	if v, ok := filter["featured"]; ok {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf("featured = $%d", len(args)))
	}
	if v, ok := filter["q"].(string); ok && v != "" {
		args = append(args, "%"+v+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// FindAll lists destinations matching the filter with a total count.
func (r *Repository) FindAll(ctx context.Context, filter core.Filter, page core.Page) ([]Destination, int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM destinations `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM destinations %s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		columns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []Destination{}
	for rows.Next() {
		d, err := scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *d)
	}
	return items, total, rows.Err()
}

// Create inserts a destination; curated records go live immediately.
func (r *Repository) Create(ctx context.Context, data CreateInput) (*Destination, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO destinations (id, name, slug, country, region, description, accommodation_count,
			lifecycle_state, moderation_state, visibility, featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 'ACTIVE', 'APPROVED', 'PUBLIC', FALSE, $7, $7)
		RETURNING `+columns,
		uuid.NewString(), data.Name, data.Slug, data.Country, data.Region, data.Description, now)
	created, err := scanRow(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, core.NewError(core.CodeAlreadyExists, "a destination with this name already exists")
		}
		return nil, err
	}
	return created, nil
}

// Update applies non-nil fields and bumps updated_at.
func (r *Repository) Update(ctx context.Context, id string, data UpdateInput) (*Destination, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if data.Name != nil {
		add("name", *data.Name)
	}
	if data.Region != nil {
		add("region", *data.Region)
	}
	if data.Description != nil {
		add("description", *data.Description)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE destinations SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), columns)
	return scanRow(r.pool.QueryRow(ctx, query, args...))
}

// SetVisibility switches the audience scope.
func (r *Repository) SetVisibility(ctx context.Context, id string, visibility core.Visibility) (*Destination, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE destinations SET visibility = $1, updated_at = $2 WHERE id = $3 RETURNING `+columns,
		string(visibility), time.Now().UTC(), id)
	return scanRow(row)
}

// Moderate applies an admin moderation action.
func (r *Repository) Moderate(ctx context.Context, id string, action core.Action) (*Destination, error) {
	var set string
	switch action {
	case core.ActionApprove:
		set = "moderation_state = 'APPROVED'"
	case core.ActionReject:
		set = "moderation_state = 'REJECTED'"
	case core.ActionPublish:
		set = "lifecycle_state = 'ACTIVE'"
	case core.ActionFeature:
		set = "featured = TRUE"
	default:
		return nil, fmt.Errorf("destinations: unsupported moderation action %q", action)
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE destinations SET `+set+`, updated_at = $1 WHERE id = $2 RETURNING `+columns,
		time.Now().UTC(), id)
	return scanRow(row)
}

// SoftDelete stamps deleted_at once.
func (r *Repository) SoftDelete(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE destinations SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// HardDelete removes the row permanently.
func (r *Repository) HardDelete(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM destinations WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Restore clears the soft-delete marker.
func (r *Repository) Restore(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE destinations SET deleted_at = NULL, updated_at = $1 WHERE id = $2 AND deleted_at IS NOT NULL`,
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
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM destinations `+where, args...).Scan(&total)
	return total, err
}

// PurgeDeletedBefore permanently removes destinations soft-deleted before
// the cutoff. The nightly purge job calls this.
func (r *Repository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM destinations WHERE deleted_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RefreshAccommodationCount recomputes the denormalized listing counter from
// the live accommodations table. The recount job calls this.
func (r *Repository) RefreshAccommodationCount(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE destinations SET accommodation_count = (
			SELECT COUNT(*) FROM accommodations
			WHERE destination_id = $1 AND deleted_at IS NULL
		), updated_at = $2
		WHERE id = $1`,
		id, time.Now().UTC())
	return err
}
