package core

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Role     string `validate:"omitempty,oneof=USER HOST"`
}

func TestStructSchemaValid(t *testing.T) {
	schema := NewStructSchema[signupInput](nil)
	out, ferr := schema.Parse(context.Background(), signupInput{Email: "a@test.local", Password: "longenough"})
	assert.True(t, ferr.Empty())
	assert.Equal(t, "a@test.local", out.Email)
}

func TestStructSchemaFieldErrors(t *testing.T) {
	schema := NewStructSchema[signupInput](nil)
	_, ferr := schema.Parse(context.Background(), signupInput{Email: "nope", Password: "short", Role: "OVERLORD"})
	require.False(t, ferr.Empty())
	assert.Contains(t, ferr.Fields, "Email")
	assert.Contains(t, ferr.Fields, "Password")
	assert.Contains(t, ferr.Fields, "Role")
}

func TestFieldErrorsMessageSorted(t *testing.T) {
	fe := &FieldErrors{}
	fe.Add("zeta", "is required")
	fe.Add("alpha", "is required")
	fe.AddForm("dates out of order")
	assert.Equal(t, "alpha: is required | zeta: is required | dates out of order", fe.Message())
}

func TestStructSchemaRecoversPanic(t *testing.T) {
	// Validating a non-struct makes the validator panic; that must surface
	// as a form error, not a crash.
	schema := NewStructSchema[int](nil)
	_, ferr := schema.Parse(context.Background(), 42)
	require.False(t, ferr.Empty())
	assert.NotEmpty(t, ferr.Form)
}

func TestResultEnvelopeJSONShape(t *testing.T) {
	okJSON, err := json.Marshal(Ok("value"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":"value"}`, string(okJSON))

	failJSON, err := json.Marshal(Fail[string](NewError(CodeNotFound, "listing not found")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"listing not found"}}`, string(failJSON))
}
