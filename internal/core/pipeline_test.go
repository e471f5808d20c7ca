package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoInput struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
}

func testLogger() *ServiceLogger {
	return NewServiceLogger("test", nil, nil)
}

func envelopeShape[T any](t *testing.T, res Result[T]) {
	t.Helper()
	if res.Err != nil {
		assert.Nil(t, res.Data, "envelope must not carry data and error")
	} else {
		require.NotNil(t, res.Data, "envelope must carry data or error")
	}
}

func TestRunSuccess(t *testing.T) {
	actor := Actor{ID: "u1", Role: RoleUser}
	res := Run(context.Background(), Exec[echoInput, string]{
		Method: "test.echo",
		Actor:  &actor,
		Input:  echoInput{Name: "a", Email: "a@test.local"},
		Schema: NewStructSchema[echoInput](nil),
		Logger: testLogger(),
		Execute: func(ctx context.Context, in echoInput, actor Actor) (string, error) {
			return in.Name + ":" + actor.ID, nil
		},
	})
	envelopeShape(t, res)
	require.True(t, res.IsOk())
	assert.Equal(t, "a:u1", *res.Data)
}

func TestRunMissingActor(t *testing.T) {
	res := Run(context.Background(), Exec[echoInput, string]{
		Method: "test.echo",
		Actor:  nil,
		Logger: testLogger(),
		Execute: func(ctx context.Context, in echoInput, actor Actor) (string, error) {
			t.Fatal("execute must not run without an actor")
			return "", nil
		},
	})
	envelopeShape(t, res)
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeUnauthorized, res.Err.Code)
}

func TestRunMalformedActorRole(t *testing.T) {
	actor := Actor{ID: "u1", Role: "OVERLORD"}
	res := Run(context.Background(), Exec[echoInput, string]{
		Method: "test.echo",
		Actor:  &actor,
		Logger: testLogger(),
		Execute: func(ctx context.Context, in echoInput, actor Actor) (string, error) {
			return "", nil
		},
	})
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeUnauthorized, res.Err.Code)
}

func TestRunAnonymousActorIsValid(t *testing.T) {
	actor := Anonymous()
	res := Run(context.Background(), Exec[echoInput, string]{
		Method: "test.echo",
		Actor:  &actor,
		Input:  echoInput{Name: "a", Email: "a@test.local"},
		Schema: NewStructSchema[echoInput](nil),
		Logger: testLogger(),
		Execute: func(ctx context.Context, in echoInput, actor Actor) (string, error) {
			return string(actor.Role), nil
		},
	})
	require.True(t, res.IsOk())
	assert.Equal(t, string(RoleGuest), *res.Data)
}

func TestRunValidationFailure(t *testing.T) {
	actor := Actor{ID: "u1", Role: RoleUser}
	res := Run(context.Background(), Exec[echoInput, string]{
		Method: "test.echo",
		Actor:  &actor,
		Input:  echoInput{},
		Schema: NewStructSchema[echoInput](nil),
		Logger: testLogger(),
		Execute: func(ctx context.Context, in echoInput, actor Actor) (string, error) {
			t.Fatal("execute must not run on invalid input")
			return "", nil
		},
	})
	envelopeShape(t, res)
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeValidation, res.Err.Code)

	fe, ok := res.Err.Details.(*FieldErrors)
	require.True(t, ok)
	assert.Contains(t, fe.Fields, "Name")
	assert.Contains(t, fe.Fields, "Email")
}

func TestRunValidationMessageDeterminism(t *testing.T) {
	actor := Actor{ID: "u1", Role: RoleUser}
	run := func() *ServiceError {
		res := Run(context.Background(), Exec[echoInput, string]{
			Method: "test.echo",
			Actor:  &actor,
			Input:  echoInput{Email: "nope"},
			Schema: NewStructSchema[echoInput](nil),
			Logger: testLogger(),
			Execute: func(ctx context.Context, in echoInput, actor Actor) (string, error) {
				return "", nil
			},
		})
		return res.Err
	}
	first, second := run(), run()
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.Message, second.Message)
	assert.Equal(t, first.Details.(*FieldErrors).Fields, second.Details.(*FieldErrors).Fields)
}

func TestRunServiceErrorPassthrough(t *testing.T) {
	actor := Actor{ID: "u1", Role: RoleUser}
	want := NewErrorWithDetails(CodeForbidden, "not allowed", map[string]any{"reason": "PRIVATE"})
	res := Run(context.Background(), Exec[echoInput, string]{
		Method: "test.echo",
		Actor:  &actor,
		Logger: testLogger(),
		Execute: func(ctx context.Context, in echoInput, actor Actor) (string, error) {
			return "", want
		},
	})
	envelopeShape(t, res)
	require.NotNil(t, res.Err)
	assert.Same(t, want, res.Err)
}

func TestRunUnexpectedErrorBecomesInternal(t *testing.T) {
	actor := Actor{ID: "u1", Role: RoleUser}
	res := Run(context.Background(), Exec[echoInput, string]{
		Method: "test.echo",
		Actor:  &actor,
		Logger: testLogger(),
		Execute: func(ctx context.Context, in echoInput, actor Actor) (string, error) {
			return "", errors.New("connection refused")
		},
	})
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeInternal, res.Err.Code)
	assert.Equal(t, "internal error", res.Err.Message)
	assert.Equal(t, "connection refused", res.Err.Details)
}

func TestRunRecoversPanic(t *testing.T) {
	actor := Actor{ID: "u1", Role: RoleUser}
	res := Run(context.Background(), Exec[echoInput, string]{
		Method: "test.echo",
		Actor:  &actor,
		Logger: testLogger(),
		Execute: func(ctx context.Context, in echoInput, actor Actor) (string, error) {
			panic("boom")
		},
	})
	envelopeShape(t, res)
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeInternal, res.Err.Code)
}
