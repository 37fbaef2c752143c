package types

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Validate runs struct-tag validation (the "validate" tags on User, Room,
// etc.) ahead of any storage round-trip, per spec.md §3's field invariants.
func Validate(v any) error {
	return validate.Struct(v)
}
