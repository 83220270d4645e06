package datastores

import (
	"context"
	"errors"
	"iter"
	"strings"
)

type (
	ContactID string
	Contact   struct {
		ID    ContactID `json:"id"`
		Name  string    `json:"name"`
		Email string    `json:"email"`
		Phone string    `json:"phone"`
	}
)

type ContactsStore interface {
	Load(context.Context)
	Create(ctx context.Context, name, email, phone string) (Contact, error)
	Update(ctx context.Context, id ContactID, name, email, phone string) (Contact, error)
	Delete(context.Context, ContactID) (bool, error)
	Get(context.Context, ContactID) (Contact, error)
	List(term string) iter.Seq[Contact]
	Count() int
}

var (
	ErrObjectNotFound = errors.New("store: object not found")
	ErrValidation     = errors.New("store: validation failed")
)

// ValidationError lists the contact fields that were empty after trimming.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "store: required fields are empty: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an operation on an id absent from the collection.
type NotFoundError struct {
	ID ContactID
}

func (e *NotFoundError) Error() string {
	return "store: contact " + string(e.ID) + " not found"
}

func (e *NotFoundError) Is(target error) bool { return target == ErrObjectNotFound }

// validate trims the fields in place and reports the empty ones.
func validate(name, email, phone *string) error {
	var empty []string
	for _, f := range []struct {
		key string
		val *string
	}{{"name", name}, {"email", email}, {"phone", phone}} {
		*f.val = strings.TrimSpace(*f.val)
		if *f.val == "" {
			empty = append(empty, f.key)
		}
	}
	if empty != nil {
		return &ValidationError{Fields: empty}
	}
	return nil
}
