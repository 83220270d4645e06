package views

import (
	"context"
	"errors"
	"slices"

	ds "github.com/oaiiae/addressbook/datastores"
)

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to [Confirmer].
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

const (
	DeletePrompt   = "Are you sure you want to delete this contact?"
	noticeRequired = "Please fill in all fields."
	noticeGone     = "This contact no longer exists."
)

// Form holds the raw values of the contact form.
type Form struct {
	Name, Email, Phone string
}

// Editor is the state behind the address book page: the form, the
// contact being edited if any, and the last notice shown to the user.
// It is not safe for concurrent use.
type Editor struct {
	Store     ds.ContactsStore
	Confirmer Confirmer

	editing ds.ContactID
	form    Form
	notice  string
}

// Submit creates a contact, or updates the one being edited.
// Validation failures keep the form values and set a notice.
func (e *Editor) Submit(ctx context.Context, f Form) error {
	var err error
	if e.editing != "" {
		_, err = e.Store.Update(ctx, e.editing, f.Name, f.Email, f.Phone)
	} else {
		_, err = e.Store.Create(ctx, f.Name, f.Email, f.Phone)
	}
	switch {
	case err == nil:
		e.Cancel()
		return nil

	case errors.Is(err, ds.ErrValidation):
		e.form, e.notice = f, noticeRequired
		return nil

	case errors.Is(err, ds.ErrObjectNotFound):
		e.Cancel()
		e.notice = noticeGone
		return nil

	default:
		return err
	}
}

// Edit fills the form with the contact and switches to update mode.
func (e *Editor) Edit(ctx context.Context, id ds.ContactID) error {
	c, err := e.Store.Get(ctx, id)
	if errors.Is(err, ds.ErrObjectNotFound) {
		e.Cancel()
		e.notice = noticeGone
		return nil
	}
	if err != nil {
		return err
	}
	e.editing, e.notice = c.ID, ""
	e.form = Form{Name: c.Name, Email: c.Email, Phone: c.Phone}
	return nil
}

// Cancel leaves update mode and clears the form.
func (e *Editor) Cancel() {
	e.editing, e.form, e.notice = "", Form{}, ""
}

// Delete removes the contact once the user confirmed it and reports
// whether something was removed.
func (e *Editor) Delete(ctx context.Context, id ds.ContactID) (bool, error) {
	if e.Confirmer == nil || !e.Confirmer.Confirm(ctx, DeletePrompt) {
		return false, nil
	}
	existed, err := e.Store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if e.editing == id {
		e.Cancel()
	}
	return existed, nil
}

// Editing returns the id of the contact being edited, if any.
func (e *Editor) Editing() (ds.ContactID, bool) { return e.editing, e.editing != "" }

// Page returns the view model of the address book filtered by name.
func (e *Editor) Page(filter string) Page {
	return Page{
		Filter:  filter,
		Rows:    slices.Collect(e.Store.List(filter)),
		Count:   e.Store.Count(),
		Form:    e.form,
		Editing: e.editing,
		Notice:  e.notice,
	}
}
