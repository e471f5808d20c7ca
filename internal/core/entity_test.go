package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST ENTITY + MOCK MODEL
// ============================================================================

type listing struct {
	ID         string
	OwnerID    string
	Name       string
	Lifecycle  LifecycleState
	Moderation ModerationState
	Visibility Visibility
	DeletedAt  *time.Time
}

func (l listing) EntityID() string { return l.ID }

func (l listing) PermissionState() EntityState {
	return EntityState{
		Lifecycle:  l.Lifecycle,
		Moderation: l.Moderation,
		Visibility: l.Visibility,
		OwnerID:    l.OwnerID,
		DeletedAt:  l.DeletedAt,
	}
}

type listingCreate struct {
	Name    string `validate:"required"`
	OwnerID string `validate:"required"`
}

type listingUpdate struct {
	Name string `validate:"required"`
}

type mockModel struct {
	rows map[string]*listing
	next int

	createCalls     int
	updateCalls     int
	softDeleteCalls int
	hardDeleteCalls int
	restoreCalls    int
}

func newMockModel() *mockModel {
	return &mockModel{rows: make(map[string]*listing), next: 1}
}

func (m *mockModel) FindByID(ctx context.Context, id string) (*listing, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (m *mockModel) FindOne(ctx context.Context, filter Filter) (*listing, error) {
	name, _ := filter["name"].(string)
	for _, row := range m.rows {
		if row.Name == name {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockModel) FindAll(ctx context.Context, filter Filter, page Page) ([]listing, int, error) {
	items := make([]listing, 0, len(m.rows))
	for _, row := range m.rows {
		if row.DeletedAt == nil {
			items = append(items, *row)
		}
	}
	return items, len(items), nil
}

func (m *mockModel) Create(ctx context.Context, data listingCreate) (*listing, error) {
	m.createCalls++
	id := "l" + string(rune('0'+m.next))
	m.next++
	row := &listing{
		ID:         id,
		OwnerID:    data.OwnerID,
		Name:       data.Name,
		Lifecycle:  LifecycleActive,
		Moderation: ModerationPending,
		Visibility: VisibilityPublic,
	}
	m.rows[id] = row
	cp := *row
	return &cp, nil
}

func (m *mockModel) Update(ctx context.Context, id string, data listingUpdate) (*listing, error) {
	m.updateCalls++
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	row.Name = data.Name
	cp := *row
	return &cp, nil
}

func (m *mockModel) SetVisibility(ctx context.Context, id string, visibility Visibility) (*listing, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	row.Visibility = visibility
	cp := *row
	return &cp, nil
}

func (m *mockModel) Moderate(ctx context.Context, id string, action Action) (*listing, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	switch action {
	case ActionApprove:
		row.Moderation = ModerationApproved
	case ActionReject:
		row.Moderation = ModerationRejected
	case ActionPublish:
		row.Lifecycle = LifecycleActive
	}
	cp := *row
	return &cp, nil
}

func (m *mockModel) SoftDelete(ctx context.Context, id string) (int64, error) {
	m.softDeleteCalls++
	row, ok := m.rows[id]
	if !ok || row.DeletedAt != nil {
		return 0, nil
	}
	at := time.Now().UTC()
	row.DeletedAt = &at
	return 1, nil
}

func (m *mockModel) HardDelete(ctx context.Context, id string) (int64, error) {
	m.hardDeleteCalls++
	if _, ok := m.rows[id]; !ok {
		return 0, nil
	}
	delete(m.rows, id)
	return 1, nil
}

func (m *mockModel) Restore(ctx context.Context, id string) (int64, error) {
	m.restoreCalls++
	row, ok := m.rows[id]
	if !ok || row.DeletedAt == nil {
		return 0, nil
	}
	row.DeletedAt = nil
	return 1, nil
}

func (m *mockModel) Count(ctx context.Context, filter Filter) (int64, error) {
	var n int64
	for _, row := range m.rows {
		if row.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

var listingTokens = PermissionTokens{
	UpdateAny:   "listings.update.any",
	UpdateOwn:   "listings.update.own",
	DeleteAny:   "listings.delete.any",
	DeleteOwn:   "listings.delete.own",
	RestoreAny:  "listings.restore.any",
	RestoreOwn:  "listings.restore.own",
	CreateRoles: []Role{RoleHost},
}

func newListingService(model *mockModel) *Service[listing, listingCreate, listingUpdate] {
	logger := NewServiceLogger("listings", nil, nil)
	return NewService(ServiceConfig[listing, listingCreate, listingUpdate]{
		Name:         "listings",
		Model:        model,
		Policy:       NewOwnerPolicy[listing]("listings", listingTokens, logger),
		CreateSchema: NewStructSchema[listingCreate](nil),
		UpdateSchema: NewStructSchema[listingUpdate](nil),
		Logger:       logger,
	})
}

func ownerActor() Actor {
	return Actor{ID: "host-1", Role: RoleHost, Permissions: []string{
		"listings.update.own", "listings.delete.own", "listings.restore.own",
	}}
}

// ============================================================================
// VERB TESTS
// ============================================================================

func TestServiceCreate(t *testing.T) {
	model := newMockModel()
	svc := newListingService(model)

	res := svc.Create(context.Background(), ownerActor(), listingCreate{Name: "Sea Breeze", OwnerID: "host-1"})
	require.True(t, res.IsOk())
	assert.Equal(t, "Sea Breeze", res.Data.Name)
	assert.Equal(t, 1, model.createCalls)
}

func TestServiceCreateDeniedForGuests(t *testing.T) {
	model := newMockModel()
	svc := newListingService(model)

	res := svc.Create(context.Background(), Anonymous(), listingCreate{Name: "Sea Breeze", OwnerID: "host-1"})
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeForbidden, res.Err.Code)
	assert.Equal(t, 0, model.createCalls)
}

func TestServiceCreateValidation(t *testing.T) {
	svc := newListingService(newMockModel())

	res := svc.Create(context.Background(), ownerActor(), listingCreate{})
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeValidation, res.Err.Code)
}

func TestServiceGetByIDNotFound(t *testing.T) {
	svc := newListingService(newMockModel())

	res := svc.GetByID(context.Background(), ownerActor(), "missing")
	require.NotNil(t, res.Err)
	// A nonexistent entity is not found, never forbidden.
	assert.Equal(t, CodeNotFound, res.Err.Code)
}

func TestServiceGetByIDViewDenied(t *testing.T) {
	model := newMockModel()
	svc := newListingService(model)
	created := svc.Create(context.Background(), ownerActor(), listingCreate{Name: "Hidden", OwnerID: "host-1"})
	require.True(t, created.IsOk())

	// Pending listings are only visible to admin or owner.
	res := svc.GetByID(context.Background(), Actor{ID: "u2", Role: RoleUser}, created.Data.ID)
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeForbidden, res.Err.Code)

	res = svc.GetByID(context.Background(), ownerActor(), created.Data.ID)
	assert.True(t, res.IsOk())
}

func TestServiceGetByField(t *testing.T) {
	model := newMockModel()
	svc := newListingService(model)
	created := svc.Create(context.Background(), ownerActor(), listingCreate{Name: "Sea Breeze", OwnerID: "host-1"})
	require.True(t, created.IsOk())

	res := svc.GetByField(context.Background(), ownerActor(), FieldLookup{Field: "name", Value: "Sea Breeze"})
	require.True(t, res.IsOk())
	assert.Equal(t, created.Data.ID, res.Data.ID)

	res = svc.GetByField(context.Background(), ownerActor(), FieldLookup{Field: "name", Value: "Nope"})
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeNotFound, res.Err.Code)
}

func TestServiceUpdateDeniedBeforeMutation(t *testing.T) {
	model := newMockModel()
	svc := newListingService(model)
	created := svc.Create(context.Background(), ownerActor(), listingCreate{Name: "Sea Breeze", OwnerID: "host-1"})
	require.True(t, created.IsOk())

	stranger := Actor{ID: "host-2", Role: RoleHost, Permissions: []string{"listings.update.own"}}
	res := svc.Update(context.Background(), stranger, created.Data.ID, listingUpdate{Name: "Taken Over"})
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeForbidden, res.Err.Code)
	assert.Equal(t, 0, model.updateCalls)
}

func TestServiceUpdateByOwner(t *testing.T) {
	model := newMockModel()
	svc := newListingService(model)
	created := svc.Create(context.Background(), ownerActor(), listingCreate{Name: "Sea Breeze", OwnerID: "host-1"})
	require.True(t, created.IsOk())

	res := svc.Update(context.Background(), ownerActor(), created.Data.ID, listingUpdate{Name: "Sea Breeze II"})
	require.True(t, res.IsOk())
	assert.Equal(t, "Sea Breeze II", res.Data.Name)
}

func TestServiceSoftDeleteIdempotent(t *testing.T) {
	model := newMockModel()
	svc := newListingService(model)
	created := svc.Create(context.Background(), ownerActor(), listingCreate{Name: "Sea Breeze", OwnerID: "host-1"})
	require.True(t, created.IsOk())

	first := svc.SoftDelete(context.Background(), ownerActor(), created.Data.ID)
	require.True(t, first.IsOk())
	assert.Equal(t, int64(1), first.Data.Count)

	second := svc.SoftDelete(context.Background(), ownerActor(), created.Data.ID)
	require.True(t, second.IsOk())
	assert.Equal(t, int64(0), second.Data.Count)

	assert.Equal(t, 1, model.softDeleteCalls)
}

func TestServiceHardDeleteSuperAdminOnly(t *testing.T) {
	model := newMockModel()
	svc := newListingService(model)
	created := svc.Create(context.Background(), ownerActor(), listingCreate{Name: "Sea Breeze", OwnerID: "host-1"})
	require.True(t, created.IsOk())

	res := svc.HardDelete(context.Background(), ownerActor(), created.Data.ID)
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeForbidden, res.Err.Code)
	assert.Equal(t, 0, model.hardDeleteCalls)

	res = svc.HardDelete(context.Background(), Actor{ID: "root", Role: RoleSuperAdmin}, created.Data.ID)
	require.True(t, res.IsOk())
	assert.Equal(t, int64(1), res.Data.Count)
}

func TestServiceRestore(t *testing.T) {
	model := newMockModel()
	svc := newListingService(model)
	created := svc.Create(context.Background(), ownerActor(), listingCreate{Name: "Sea Breeze", OwnerID: "host-1"})
	require.True(t, created.IsOk())

	deleted := svc.SoftDelete(context.Background(), ownerActor(), created.Data.ID)
	require.True(t, deleted.IsOk())

	restored := svc.Restore(context.Background(), ownerActor(), created.Data.ID)
	require.True(t, restored.IsOk())
	assert.Equal(t, int64(1), restored.Data.Count)

	res := svc.GetByID(context.Background(), ownerActor(), created.Data.ID)
	require.True(t, res.IsOk())
	assert.Nil(t, res.Data.DeletedAt)
}

func TestServiceSearchFiltersByViewPermission(t *testing.T) {
	model := newMockModel()
	svc := newListingService(model)
	admin := Actor{ID: "a1", Role: RoleAdmin}

	public := svc.Create(context.Background(), ownerActor(), listingCreate{Name: "Public", OwnerID: "host-1"})
	require.True(t, public.IsOk())
	moderated := svc.Moderate(context.Background(), admin, public.Data.ID, ActionApprove)
	require.True(t, moderated.IsOk())

	pending := svc.Create(context.Background(), ownerActor(), listingCreate{Name: "Pending", OwnerID: "host-1"})
	require.True(t, pending.IsOk())

	// A stranger only sees the approved public listing, and the total agrees.
	res := svc.Search(context.Background(), Actor{ID: "u2", Role: RoleUser}, SearchParams{})
	require.True(t, res.IsOk())
	assert.Len(t, res.Data.Items, 1)
	assert.Equal(t, 1, res.Data.Total)
	assert.Equal(t, "Public", res.Data.Items[0].Name)

	// The owner sees both.
	res = svc.Search(context.Background(), ownerActor(), SearchParams{})
	require.True(t, res.IsOk())
	assert.Len(t, res.Data.Items, 2)
	assert.Equal(t, 2, res.Data.Total)
}

func TestServiceCount(t *testing.T) {
	model := newMockModel()
	svc := newListingService(model)
	created := svc.Create(context.Background(), ownerActor(), listingCreate{Name: "One", OwnerID: "host-1"})
	require.True(t, created.IsOk())

	res := svc.Count(context.Background(), Anonymous(), Filter{})
	require.True(t, res.IsOk())
	assert.Equal(t, int64(1), res.Data.Count)
}

func TestServiceModerate(t *testing.T) {
	model := newMockModel()
	svc := newListingService(model)
	created := svc.Create(context.Background(), ownerActor(), listingCreate{Name: "Sea Breeze", OwnerID: "host-1"})
	require.True(t, created.IsOk())

	res := svc.Moderate(context.Background(), ownerActor(), created.Data.ID, ActionApprove)
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeForbidden, res.Err.Code)

	res = svc.Moderate(context.Background(), Actor{ID: "a1", Role: RoleAdmin}, created.Data.ID, ActionApprove)
	require.True(t, res.IsOk())
	assert.Equal(t, ModerationApproved, res.Data.Moderation)
}

func TestServiceUpdateVisibility(t *testing.T) {
	model := newMockModel()
	svc := newListingService(model)
	created := svc.Create(context.Background(), ownerActor(), listingCreate{Name: "Sea Breeze", OwnerID: "host-1"})
	require.True(t, created.IsOk())

	res := svc.UpdateVisibility(context.Background(), ownerActor(), created.Data.ID, VisibilityPrivate)
	require.True(t, res.IsOk())
	assert.Equal(t, VisibilityPrivate, res.Data.Visibility)

	res = svc.UpdateVisibility(context.Background(), ownerActor(), created.Data.ID, "SECRET")
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeValidation, res.Err.Code)
}

func TestServiceHooksThreadState(t *testing.T) {
	model := newMockModel()
	logger := NewServiceLogger("listings", nil, nil)
	var afterSaw string
	svc := NewService(ServiceConfig[listing, listingCreate, listingUpdate]{
		Name:         "listings",
		Model:        model,
		Policy:       NewOwnerPolicy[listing]("listings", listingTokens, logger),
		CreateSchema: NewStructSchema[listingCreate](nil),
		UpdateSchema: NewStructSchema[listingUpdate](nil),
		Logger:       logger,
		Hooks: Hooks[listing, listingCreate, listingUpdate]{
			BeforeSoftDelete: func(ctx context.Context, target *listing, actor Actor) (HookState, error) {
				return HookState{"owner": target.OwnerID}, nil
			},
			AfterSoftDelete: func(ctx context.Context, target *listing, state HookState, actor Actor) error {
				afterSaw, _ = state["owner"].(string)
				return nil
			},
		},
	})

	created := svc.Create(context.Background(), ownerActor(), listingCreate{Name: "Sea Breeze", OwnerID: "host-1"})
	require.True(t, created.IsOk())
	res := svc.SoftDelete(context.Background(), ownerActor(), created.Data.ID)
	require.True(t, res.IsOk())
	assert.Equal(t, "host-1", afterSaw)
}

func TestServiceHookServiceErrorPropagates(t *testing.T) {
	model := newMockModel()
	logger := NewServiceLogger("listings", nil, nil)
	svc := NewService(ServiceConfig[listing, listingCreate, listingUpdate]{
		Name:         "listings",
		Model:        model,
		Policy:       NewOwnerPolicy[listing]("listings", listingTokens, logger),
		CreateSchema: NewStructSchema[listingCreate](nil),
		UpdateSchema: NewStructSchema[listingUpdate](nil),
		Logger:       logger,
		Hooks: Hooks[listing, listingCreate, listingUpdate]{
			BeforeCreate: func(ctx context.Context, input listingCreate, actor Actor) (listingCreate, error) {
				return input, NewError(CodeAlreadyExists, "listing name taken")
			},
		},
	})

	res := svc.Create(context.Background(), ownerActor(), listingCreate{Name: "Dup", OwnerID: "host-1"})
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeAlreadyExists, res.Err.Code)
	assert.Equal(t, 0, model.createCalls)
}
