// Package users is a small in-memory users API whose inputs are validated with sieve.
package users

import (
	"context"
	"time"

	"github.com/Azhovan/sieve"
)

// User is a stored user.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       float64   `json:"age"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateUserInput is read from the query string of POST /users.
type CreateUserInput struct {
	Name string  `sieve:"required"`
	Age  float64 `sieve:"required"`
}

// UpdateUserInput is read from the body of PATCH /users/:id. Unset fields are left unchanged.
type UpdateUserInput struct {
	Name sieve.Optional[string]  `sieve:"min:1"`
	Age  sieve.Optional[float64] `sieve:"min:0"`
}

// Apply copies the set fields of in onto u.
func (in UpdateUserInput) Apply(u *User) {
	if name, ok := in.Name.Get(); ok {
		u.Name = name
	}
	if age, ok := in.Age.Get(); ok {
		u.Age = age
	}
}

// CreateUserSchema validates query parameters. Query values are strings, so coercion is on,
// and unrelated parameters are ignored.
func CreateUserSchema() sieve.Schema[CreateUserInput] {
	return sieve.Struct[CreateUserInput]().Coerce(true).Strict(false)
}

// UpdateUserSchema validates a JSON, YAML, TOML or form body. Unknown keys are rejected and
// an update must change at least one field.
func UpdateUserSchema() sieve.Schema[UpdateUserInput] {
	return sieve.Struct[UpdateUserInput]().WithRefiner(sieve.RefinerFunc[UpdateUserInput](
		func(_ context.Context, in *UpdateUserInput) error {
			if !in.Name.Set && !in.Age.Set {
				return sieve.Issues{{Code: sieve.CodeCustom, Message: "At least one of 'name', 'age' must be provided"}}
			}
			return nil
		},
	))
}
