package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodgelist/lodgelist/internal/core"
	"github.com/lodgelist/lodgelist/internal/shared"
)

type mockModel struct {
	byID    map[string]*Event
	created []CreateInput
	updated []UpdateInput
}

func newMockModel(items ...Event) *mockModel {
	m := &mockModel{byID: map[string]*Event{}}
	for i := range items {
		item := items[i]
		m.byID[item.ID] = &item
	}
	return m
}

func (m *mockModel) FindByID(_ context.Context, id string) (*Event, error) {
	return m.byID[id], nil
}

func (m *mockModel) FindOne(_ context.Context, filter core.Filter) (*Event, error) {
	slug, _ := filter["slug"].(string)
	for _, item := range m.byID {
		if item.Slug == slug {
			return item, nil
		}
	}
	return nil, nil
}

func (m *mockModel) FindAll(_ context.Context, _ core.Filter, _ core.Page) ([]Event, int, error) {
	items := []Event{}
	for _, item := range m.byID {
		items = append(items, *item)
	}
	return items, len(items), nil
}

func (m *mockModel) Create(_ context.Context, data CreateInput) (*Event, error) {
	m.created = append(m.created, data)
	created := &Event{
		ID:            "evt-new",
		DestinationID: data.DestinationID,
		OwnerID:       data.OwnerID,
		Title:         data.Title,
		Slug:          data.Slug,
		StartsAt:      data.StartsAt,
		EndsAt:        data.EndsAt,
		Capacity:      data.Capacity,
		Lifecycle:     core.LifecycleDraft,
		Moderation:    core.ModerationPending,
		Visibility:    core.VisibilityPublic,
	}
	m.byID[created.ID] = created
	return created, nil
}

func (m *mockModel) Update(_ context.Context, id string, data UpdateInput) (*Event, error) {
	m.updated = append(m.updated, data)
	current := m.byID[id]
	if current == nil {
		return nil, nil
	}
	if data.StartsAt != nil {
		current.StartsAt = *data.StartsAt
	}
	if data.EndsAt != nil {
		current.EndsAt = *data.EndsAt
	}
	return current, nil
}

func (m *mockModel) SetVisibility(_ context.Context, id string, visibility core.Visibility) (*Event, error) {
	current := m.byID[id]
	if current != nil {
		current.Visibility = visibility
	}
	return current, nil
}

func (m *mockModel) Moderate(_ context.Context, id string, action core.Action) (*Event, error) {
	if action == core.ActionFeature {
		return nil, core.NewError(core.CodeNotImplemented, "featuring events is not available yet")
	}
	return m.byID[id], nil
}

func (m *mockModel) SoftDelete(_ context.Context, id string) (int64, error) { return 1, nil }
func (m *mockModel) HardDelete(_ context.Context, id string) (int64, error) { return 1, nil }
func (m *mockModel) Restore(_ context.Context, id string) (int64, error)    { return 1, nil }
func (m *mockModel) Count(_ context.Context, _ core.Filter) (int64, error) {
	return int64(len(m.byID)), nil
}

func host(id string) core.Actor {
	return core.Actor{ID: id, Role: core.RoleHost, Permissions: shared.DefaultPermissions(core.RoleHost)}
}

func tasting(owner string) Event {
	starts := time.Date(2026, 10, 3, 18, 0, 0, 0, time.UTC)
	return Event{
		ID:            "evt-1",
		DestinationID: "dest-1",
		OwnerID:       owner,
		Title:         "Harvest Wine Tasting",
		Slug:          "harvest-wine-tasting",
		StartsAt:      starts,
		EndsAt:        starts.Add(3 * time.Hour),
		Capacity:      40,
		Lifecycle:     core.LifecycleActive,
		Moderation:    core.ModerationApproved,
		Visibility:    core.VisibilityPublic,
	}
}

func TestCreateRejectsInvertedSchedule(t *testing.T) {
	model := newMockModel()
	svc := NewService(model, nil)

	starts := time.Date(2026, 10, 3, 18, 0, 0, 0, time.UTC)
	res := svc.Create(context.Background(), host("host-1"), CreateInput{
		DestinationID: "5f0c23f0-9a72-4c57-9f6e-0a4a8d8e2f11",
		Title:         "Harvest Wine Tasting",
		StartsAt:      starts,
		EndsAt:        starts.Add(-time.Hour),
		Capacity:      40,
	})

	require.False(t, res.IsOk())
	assert.Equal(t, core.CodeValidation, res.Err.Code)
	assert.Empty(t, model.created)
}

func TestCreateDerivesSlug(t *testing.T) {
	model := newMockModel()
	svc := NewService(model, nil)

	starts := time.Date(2026, 10, 3, 18, 0, 0, 0, time.UTC)
	res := svc.Create(context.Background(), host("host-1"), CreateInput{
		DestinationID: "5f0c23f0-9a72-4c57-9f6e-0a4a8d8e2f11",
		Title:         "Fête de la Musique",
		StartsAt:      starts,
		EndsAt:        starts.Add(4 * time.Hour),
		Capacity:      500,
	})

	require.True(t, res.IsOk(), "create should succeed: %+v", res.Err)
	require.Len(t, model.created, 1)
	assert.Equal(t, "fete-de-la-musique", model.created[0].Slug)
	assert.Equal(t, "host-1", model.created[0].OwnerID)
}

func TestUpdateRechecksScheduleAgainstCurrentRecord(t *testing.T) {
	model := newMockModel(tasting("host-1"))
	svc := NewService(model, nil)

	// Moving only the end before the stored start must fail.
	badEnd := time.Date(2026, 10, 3, 17, 0, 0, 0, time.UTC)
	res := svc.Update(context.Background(), host("host-1"), "evt-1", UpdateInput{EndsAt: &badEnd})
	require.False(t, res.IsOk())
	assert.Equal(t, core.CodeValidation, res.Err.Code)
	assert.Empty(t, model.updated)

	// Moving both ends together is fine.
	newStart := time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC)
	newEnd := newStart.Add(2 * time.Hour)
	res = svc.Update(context.Background(), host("host-1"), "evt-1", UpdateInput{StartsAt: &newStart, EndsAt: &newEnd})
	require.True(t, res.IsOk(), "update should succeed: %+v", res.Err)
}

func TestFeatureActionIsNotImplemented(t *testing.T) {
	svc := NewService(newMockModel(tasting("host-1")), nil)

	adminActor := core.Actor{ID: "admin-1", Role: core.RoleAdmin, Permissions: shared.DefaultPermissions(core.RoleAdmin)}
	res := svc.Moderate(context.Background(), adminActor, "evt-1", core.ActionFeature)
	require.False(t, res.IsOk())
	assert.Equal(t, core.CodeNotImplemented, res.Err.Code)
}

func TestUserCannotModerateEvent(t *testing.T) {
	svc := NewService(newMockModel(tasting("host-1")), nil)

	user := core.Actor{ID: "user-1", Role: core.RoleUser, Permissions: shared.DefaultPermissions(core.RoleUser)}
	res := svc.Moderate(context.Background(), user, "evt-1", core.ActionApprove)
	require.False(t, res.IsOk())
	assert.Equal(t, core.CodeForbidden, res.Err.Code)
}
