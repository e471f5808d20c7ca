package posts

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

const columns = `id, author_id, destination_id, title, slug, body, tags, lifecycle_state,
	moderation_state, visibility, featured, created_at, updated_at, deleted_at`

// Repository persists posts through PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository on the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanRow(row pgx.Row) (*Post, error) {
	var p Post
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.DestinationID, &p.Title, &p.Slug, &p.Body, &p.Tags,
		&p.Lifecycle, &p.Moderation, &p.Visibility, &p.Featured,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// FindByID returns the post or (nil, nil) when missing.
func (r *Repository) FindByID(ctx context.Context, id string) (*Post, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM posts WHERE id = $1`, id)
	return scanRow(row)
}

// FindOne resolves a unique-field lookup over slug.
func (r *Repository) FindOne(ctx context.Context, filter core.Filter) (*Post, error) {
	if value, ok := filter["slug"]; ok {
		row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM posts WHERE slug = $1`, value)
		return scanRow(row)
	}
	return nil, fmt.Errorf("posts: unsupported lookup filter %v", filter)
}

func buildWhere(filter core.Filter) (string, []any) {
	conditions := []string{"deleted_at IS NULL"}
	args := []any{}

	if v, ok := filter["author_id"]; ok {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", len(args)))
	}
	if v, ok := filter["destination_id"]; ok {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf("destination_id = $%d", len(args)))
	}
	if v, ok := filter["tag"]; ok {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(tags)", len(args)))
	}
	if v, ok := filter["moderation_state"]; ok {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf("moderation_state = $%d", len(args)))
	}
	if v, ok := filter["q"].(string); ok && v != "" {
		args = append(args, "%"+v+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR body ILIKE $%d)", len(args), len(args)))
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// FindAll lists posts matching the filter, newest first.
func (r *Repository) FindAll(ctx context.Context, filter core.Filter, page core.Page) ([]Post, int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM posts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		columns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []Post{}
	for rows.Next() {
		p, err := scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *p)
	}
	return items, total, rows.Err()
}

// Create inserts a new post awaiting review.
func (r *Repository) Create(ctx context.Context, data CreateInput) (*Post, error) {
	visibility := data.Visibility
	if visibility == "" {
		visibility = string(core.VisibilityPublic)
	}
	tags := data.Tags
	if tags == nil {
		tags = []string{}
	}
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (id, author_id, destination_id, title, slug, body, tags,
			lifecycle_state, moderation_state, visibility, featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'DRAFT', 'PENDING', $8, FALSE, $9, $9)
		RETURNING `+columns,
		uuid.NewString(), data.AuthorID, data.DestinationID, data.Title, data.Slug, data.Body,
		tags, visibility, now)
	created, err := scanRow(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, core.NewError(core.CodeAlreadyExists, "a post with this title already exists")
		}
		return nil, err
	}
	return created, nil
}

// Update applies non-nil fields. A content edit sends the post back to
// review, which the update hook signals through ResetModeration.
func (r *Repository) Update(ctx context.Context, id string, data UpdateInput) (*Post, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if data.Title != nil {
		add("title", *data.Title)
	}
	if data.Body != nil {
		add("body", *data.Body)
	}
	if data.Tags != nil {
		add("tags", *data.Tags)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}
	if data.resetModeration {
		sets = append(sets, "moderation_state = 'PENDING'")
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), columns)
	return scanRow(r.pool.QueryRow(ctx, query, args...))
}

// SetVisibility switches the audience scope.
func (r *Repository) SetVisibility(ctx context.Context, id string, visibility core.Visibility) (*Post, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE posts SET visibility = $1, updated_at = $2 WHERE id = $3 RETURNING `+columns,
		string(visibility), time.Now().UTC(), id)
	return scanRow(row)
}

// Moderate applies an admin moderation action.
func (r *Repository) Moderate(ctx context.Context, id string, action core.Action) (*Post, error) {
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
		return nil, fmt.Errorf("posts: unsupported moderation action %q", action)
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE posts SET `+set+`, updated_at = $1 WHERE id = $2 RETURNING `+columns,
		time.Now().UTC(), id)
	return scanRow(row)
}

// SoftDelete stamps deleted_at once.
func (r *Repository) SoftDelete(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE posts SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// HardDelete removes the row permanently.
func (r *Repository) HardDelete(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Restore clears the soft-delete marker.
func (r *Repository) Restore(ctx context.Context, id string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE posts SET deleted_at = NULL, updated_at = $1 WHERE id = $2 AND deleted_at IS NOT NULL`,
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
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts `+where, args...).Scan(&total)
	return total, err
}

// PurgeDeletedBefore permanently removes posts soft-deleted before the
// cutoff. The nightly purge job calls this.
func (r *Repository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE deleted_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
