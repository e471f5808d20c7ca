package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors collects validation failures keyed by field, plus failures
// that apply to the whole form.
type FieldErrors struct {
	Fields map[string][]string `json:"fieldErrors,omitempty"`
	Form   []string            `json:"formErrors,omitempty"`
}

// Add appends a message for a field.
func (fe *FieldErrors) Add(field, message string) {
	if fe.Fields == nil {
		fe.Fields = make(map[string][]string)
	}
	fe.Fields[field] = append(fe.Fields[field], message)
}

// AddForm appends a whole-form message.
func (fe *FieldErrors) AddForm(message string) {
	fe.Form = append(fe.Form, message)
}

// Empty reports whether no failures were recorded.
func (fe *FieldErrors) Empty() bool {
	return fe == nil || (len(fe.Fields) == 0 && len(fe.Form) == 0)
}

// Message concatenates every failure deterministically: field messages in
// sorted field order, then form messages in insertion order. The same
// invalid input always yields the same message.
func (fe *FieldErrors) Message() string {
	if fe.Empty() {
		return ""
	}
	keys := make([]string, 0, len(fe.Fields))
	for k := range fe.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+len(fe.Form))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(fe.Fields[k], "; ")))
	}
	parts = append(parts, fe.Form...)
	return strings.Join(parts, " | ")
}

// Schema validates and normalizes an input value. Implementations may be
// asynchronous underneath; Parse must honour ctx cancellation where it does
// real work.
type Schema[T any] interface {
	Parse(ctx context.Context, input T) (T, *FieldErrors)
}

// StructSchema validates struct inputs through go-playground validator tags.
type StructSchema[T any] struct {
	validate *validator.Validate
}

// NewStructSchema builds a StructSchema sharing the given validator. A nil
// validator gets a private instance.
func NewStructSchema[T any](validate *validator.Validate) *StructSchema[T] {
	if validate == nil {
		validate = validator.New()
	}
	return &StructSchema[T]{validate: validate}
}

// Parse validates input against its struct tags. A panicking validator (for
// example when T is not a struct) is reported as a form-level failure, never
// propagated.
func (s *StructSchema[T]) Parse(ctx context.Context, input T) (out T, ferr *FieldErrors) {
	defer func() {
		if r := recover(); r != nil {
			fe := &FieldErrors{}
			fe.AddForm(fmt.Sprintf("schema rejected input: %v", r))
			ferr = fe
		}
	}()

	if err := s.validate.StructCtx(ctx, input); err != nil {
		fe := &FieldErrors{}
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			fe.AddForm(err.Error())
			return input, fe
		}
		for _, v := range verrs {
			fe.Add(v.Field(), validationMessage(v))
		}
		return input, fe
	}
	return input, nil
}

func validationMessage(v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + v.Param()
	case "max":
		return "must be at most " + v.Param()
	case "oneof":
		return "must be one of " + v.Param()
	case "gtfield":
		return "must be after " + v.Param()
	case "uuid":
		return "must be a valid id"
	default:
		return "failed rule " + v.Tag()
	}
}

// SchemaFunc adapts a plain function to the Schema interface.
type SchemaFunc[T any] func(ctx context.Context, input T) (T, *FieldErrors)

// Parse implements Schema.
func (f SchemaFunc[T]) Parse(ctx context.Context, input T) (T, *FieldErrors) {
	return f(ctx, input)
}
