package posts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodgelist/lodgelist/internal/core"
	"github.com/lodgelist/lodgelist/internal/shared"
)

type mockModel struct {
	byID    map[string]*Post
	created []CreateInput
	updated []UpdateInput
}

func newMockModel(items ...Post) *mockModel {
	m := &mockModel{byID: map[string]*Post{}}
	for i := range items {
		item := items[i]
		m.byID[item.ID] = &item
	}
	return m
}

func (m *mockModel) FindByID(_ context.Context, id string) (*Post, error) {
	return m.byID[id], nil
}

func (m *mockModel) FindOne(_ context.Context, filter core.Filter) (*Post, error) {
	slug, _ := filter["slug"].(string)
	for _, item := range m.byID {
		if item.Slug == slug {
			return item, nil
		}
	}
	return nil, nil
}

func (m *mockModel) FindAll(_ context.Context, _ core.Filter, _ core.Page) ([]Post, int, error) {
	items := []Post{}
	for _, item := range m.byID {
		items = append(items, *item)
	}
	return items, len(items), nil
}

func (m *mockModel) Create(_ context.Context, data CreateInput) (*Post, error) {
	m.created = append(m.created, data)
	created := &Post{
		ID:         "post-new",
		AuthorID:   data.AuthorID,
		Title:      data.Title,
		Slug:       data.Slug,
		Body:       data.Body,
		Lifecycle:  core.LifecycleDraft,
		Moderation: core.ModerationPending,
		Visibility: core.VisibilityPublic,
	}
	m.byID[created.ID] = created
	return created, nil
}

func (m *mockModel) Update(_ context.Context, id string, data UpdateInput) (*Post, error) {
	m.updated = append(m.updated, data)
	current := m.byID[id]
	if current == nil {
		return nil, nil
	}
	if data.Body != nil {
		current.Body = *data.Body
	}
	if data.resetModeration {
		current.Moderation = core.ModerationPending
	}
	return current, nil
}

func (m *mockModel) SetVisibility(_ context.Context, id string, visibility core.Visibility) (*Post, error) {
	current := m.byID[id]
	if current != nil {
		current.Visibility = visibility
	}
	return current, nil
}

func (m *mockModel) Moderate(_ context.Context, id string, action core.Action) (*Post, error) {
	current := m.byID[id]
	if current == nil {
		return nil, nil
	}
	switch action {
	case core.ActionApprove:
		current.Moderation = core.ModerationApproved
	case core.ActionReject:
		current.Moderation = core.ModerationRejected
	case core.ActionPublish:
		current.Lifecycle = core.LifecycleActive
	}
	return current, nil
}

func (m *mockModel) SoftDelete(_ context.Context, id string) (int64, error) { return 1, nil }
func (m *mockModel) HardDelete(_ context.Context, id string) (int64, error) { return 1, nil }
func (m *mockModel) Restore(_ context.Context, id string) (int64, error)    { return 1, nil }
func (m *mockModel) Count(_ context.Context, _ core.Filter) (int64, error) {
	return int64(len(m.byID)), nil
}

func user(id string) core.Actor {
	return core.Actor{ID: id, Role: core.RoleUser, Permissions: shared.DefaultPermissions(core.RoleUser)}
}

func admin() core.Actor {
	return core.Actor{ID: "admin-1", Role: core.RoleAdmin, Permissions: shared.DefaultPermissions(core.RoleAdmin)}
}

func approvedPost(author string) Post {
	return Post{
		ID:         "post-1",
		AuthorID:   author,
		Title:      "A Week in the Azores",
		Slug:       "a-week-in-the-azores",
		Body:       "Day one started with a hike up Pico...",
		Lifecycle:  core.LifecycleActive,
		Moderation: core.ModerationApproved,
		Visibility: core.VisibilityPublic,
	}
}

func TestUserWritesPost(t *testing.T) {
	model := newMockModel()
	svc := NewService(model, nil)

	res := svc.Create(context.Background(), user("user-1"), CreateInput{
		Title: "A Week in the Azores",
		Body:  "Day one started with a hike up Pico...",
	})

	require.True(t, res.IsOk(), "create should succeed: %+v", res.Err)
	require.Len(t, model.created, 1)
	assert.Equal(t, "user-1", model.created[0].AuthorID)
	assert.Equal(t, "a-week-in-the-azores", model.created[0].Slug)
}

func TestContentEditSendsApprovedPostBackToReview(t *testing.T) {
	model := newMockModel(approvedPost("user-1"))
	svc := NewService(model, nil)

	body := "Rewritten from scratch with better photos."
	res := svc.Update(context.Background(), user("user-1"), "post-1", UpdateInput{Body: &body})

	require.True(t, res.IsOk(), "update should succeed: %+v", res.Err)
	assert.Equal(t, core.ModerationPending, res.Data.Moderation)
	require.Len(t, model.updated, 1)
	assert.True(t, model.updated[0].resetModeration)
}

func TestTagOnlyEditKeepsApproval(t *testing.T) {
	model := newMockModel(approvedPost("user-1"))
	svc := NewService(model, nil)

	tags := []string{"azores", "hiking"}
	res := svc.Update(context.Background(), user("user-1"), "post-1", UpdateInput{Tags: &tags})

	require.True(t, res.IsOk())
	require.Len(t, model.updated, 1)
	assert.False(t, model.updated[0].resetModeration)
}

func TestStrangerCannotEditPost(t *testing.T) {
	svc := NewService(newMockModel(approvedPost("user-1")), nil)

	body := "Hijacked content"
	res := svc.Update(context.Background(), user("user-2"), "post-1", UpdateInput{Body: &body})
	require.False(t, res.IsOk())
	assert.Equal(t, core.CodeForbidden, res.Err.Code)
}

func TestRejectedPostHiddenFromPublic(t *testing.T) {
	rejected := approvedPost("user-1")
	rejected.Moderation = core.ModerationRejected
	svc := NewService(newMockModel(rejected), nil)

	res := svc.GetByID(context.Background(), core.Anonymous(), "post-1")
	require.False(t, res.IsOk())
	assert.Equal(t, core.CodeForbidden, res.Err.Code)

	owner := svc.GetByID(context.Background(), user("user-1"), "post-1")
	require.True(t, owner.IsOk(), "author should still see their rejected post")
}

func TestAdminApprovesPost(t *testing.T) {
	pending := approvedPost("user-1")
	pending.Moderation = core.ModerationPending
	svc := NewService(newMockModel(pending), nil)

	res := svc.Moderate(context.Background(), admin(), "post-1", core.ActionApprove)
	require.True(t, res.IsOk())
	assert.Equal(t, core.ModerationApproved, res.Data.Moderation)
}
