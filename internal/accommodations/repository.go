package accommodations

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

const columns = `id, destination_id, owner_id, name, slug, summary, price_per_night, max_guests,
	amenities, lifecycle_state, moderation_state, visibility, featured, created_at, updated_at, deleted_at`

// Repository persists accommodations through PostgreSQL. It implements
// core.Model for the accommodation types.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository on the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanRow(row pgx.Row) (*Accommodation, error) {
	var a Accommodation
	err := row.Scan(
		&a.ID, &a.DestinationID, &a.OwnerID, &a.Name, &a.Slug, &a.Summary, &a.PricePerNight,
		&a.MaxGuests, &a.Amenities, &a.Lifecycle, &a.Moderation, &a.Visibility, &a.Featured,
		&a.CreatedAt, &a.UpdatedAt, &a.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// FindByID returns the accommodation or (nil, nil) when missing. Soft-deleted
// rows are still returned; the kernel decides what a caller may do with them.
func (r *Repository) FindByID(ctx context.Context, id string) (*Accommodation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM accommodations WHERE id = $1`, id)
	return scanRow(row)
}

// FindOne resolves a unique-field lookup. Only slug and name are unique.
func (r *Repository) FindOne(ctx context.Context, filter core.Filter) (*Accommodation, error) {
	for _, field := range []string{"slug", "name"} {
		if value, ok := filter[field]; ok {
			row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM accommodations WHERE `+field+` = $1`, value)
			return scanRow(row)
		}
	}
	return nil, fmt.Errorf("accommodations: unsupported lookup filter %v", filter)
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
	if v, ok := filter["featured"]; ok {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf("featured = $%d", len(args)))
	}
	if v, ok := filter["q"].(string); ok && v != "" {
		args = append(args, "%"+v+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR summary ILIKE $%d)", len(args), len(args)))
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// FindAll lists accommodations matching the filter with a total count.
func (r *Repository) FindAll(ctx context.Context, filter core.Filter, page core.Page) ([]Accommodation, int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accommodations `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM accommodations %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		columns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []Accommodation{}
	for rows.Next() {
		a, err := scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *a)
	}
	return items, total, rows.Err()
}

// Create inserts a new draft listing. A slug collision surfaces as
// ALREADY_EXISTS.
func (r *Repository) Create(ctx context.Context, data CreateInput) (*Accommodation, error) {
	visibility := data.Visibility
	if visibility == "" {
		visibility = string(core.VisibilityPublic)
	}
	amenities := data.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accommodations (id, destination_id, owner_id, name, slug, summary, price_per_night,
			max_guests, amenities, lifecycle_state, moderation_state, visibility, featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'DRAFT', 'PENDING', $10, FALSE, $11, $11)
		RETURNING `+columns,
		uuid.NewString(), data.DestinationID, data.OwnerID, data.Name, data.Slug, data.Summary,
		data.PricePerNight, data.MaxGuests, amenities, visibility, now)
	created, err := scanRow(row)
	if err != nil {
		return nil, translateUnique(err, "a listing with this name already exists")
	}
	return created, nil
}

// Update applies non-nil fields and bumps updated_at.
func (r *Repository) Update(ctx context.Context, id string, data UpdateInput) (*Accommodation, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if data.Name != nil {
		add("name", *data.Name)
	}
	if data.Summary != nil {
		add("summary", *data.Summary)
	}
	if data.PricePerNight != nil {
		add("price_per_night", *data.PricePerNight)
	}
	if data.MaxGuests != nil {
		add("max_guests", *data.MaxGuests)
	}
	if data.Amenities != nil {
		add("amenities", *data.Amenities)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE accommodations SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), columns)
	return scanRow(r.pool.QueryRow(ctx, query, args...))
}

// SetVisibility switches the audience scope.
func (r *Repository) SetVisibility(ctx context.Context, id string, visibility core.Visibility) (*Accommodation, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE accommodations SET visibility = $1, updated_at = $2 WHERE id = $3 RETURNING `+columns,
		string(visibility), time.Now().UTC(), id)
	return scanRow(row)
}

// Moderate applies an admin moderation action.
func (r *Repository) Moderate(ctx context.Context, id string, action core.Action) (*Accommodation, error) {
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
		return nil, fmt.Errorf("accommodations: unsupported moderation action %q", action)
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE accommodations SET `+set+`, updated_at = $1 WHERE id = $2 RETURNING `+columns,
		time.Now().UTC(), id)
	return scanRow(row)
}

// SoftDelete stamps deleted_at once; repeating it touches zero rows.
func (r *Repository) SoftDelete(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accommodations SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// HardDelete removes the row permanently.
func (r *Repository) HardDelete(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accommodations WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Restore clears the soft-delete marker.
func (r *Repository) Restore(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accommodations SET deleted_at = NULL, updated_at = $1 WHERE id = $2 AND deleted_at IS NOT NULL`,
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
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accommodations `+where, args...).Scan(&total)
	return total, err
}

// CountByDestination counts live listings for one destination; the recount
// job uses it to refresh the denormalized counter.
func (r *Repository) CountByDestination(ctx context.Context, destinationID string) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM accommodations WHERE destination_id = $1 AND deleted_at IS NULL`,
		destinationID).Scan(&total)
	return total, err
}

// PurgeDeletedBefore permanently removes listings soft-deleted before the
// cutoff. The nightly purge job calls this.
func (r *Repository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accommodations WHERE deleted_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func translateUnique(err error, message string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return core.NewError(core.CodeAlreadyExists, message)
	}
	return err
}
