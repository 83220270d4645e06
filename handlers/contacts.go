package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/oaiiae/addressbook/datastores"
)

type Contacts struct {
	Store        ds.ContactsStore
	ErrorHandler func(context.Context, error)
}

type ContactModel struct {
	ID ds.ContactID `json:"id" readOnly:"true" example:"AZn2yH5sfV6Zx4t0s9X9Aw"`

	Name  string `json:"name"  example:"Ana"`
	Email string `json:"email" example:"ana@example.com"`
	Phone string `json:"phone" example:"+55 11 91234-5678"`
}

func contactModel(c ds.Contact) ContactModel {
	return ContactModel{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
}

// ContactFields is the request body of create and update.
type ContactFields struct {
	Name  string `json:"name"  example:"Ana"               doc:"Required, surrounding spaces are trimmed"`
	Email string `json:"email" example:"ana@example.com"   doc:"Required, surrounding spaces are trimmed"`
	Phone string `json:"phone" example:"+55 11 91234-5678" doc:"Required, surrounding spaces are trimmed"`
}

func (h *Contacts) RegisterList(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/",
		handlerWithErrorHandler(h.list, h.ErrorHandler),
		opErrors(http.StatusInternalServerError),
	)
}

type ContactsListOutput struct {
	Total int `header:"X-Total-Count" doc:"Number of contacts, regardless of the filter"`
	Body  []ContactModel
}

func (h *Contacts) list(_ context.Context, input *struct {
	Query string `query:"q" doc:"Only list contacts whose name contains this, ignoring case"`
}) (*ContactsListOutput, error) {
	body := []ContactModel{}
	for contact := range h.Store.List(input.Query) {
		body = append(body, contactModel(contact))
	}
	return &ContactsListOutput{Total: h.Store.Count(), Body: body}, nil
}

func (h *Contacts) RegisterGet(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/{id}",
		handlerWithErrorHandler(h.get, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
}

type ContactsGetOutput struct {
	Body ContactModel
}

func (h *Contacts) get(ctx context.Context, input *struct {
	ID ds.ContactID `path:"id" doc:"ID of the contact to get"`
}) (*ContactsGetOutput, error) {
	contact, err := h.Store.Get(ctx, input.ID)
	if err != nil {
		return nil, storeError(err)
	}
	return &ContactsGetOutput{Body: contactModel(contact)}, nil
}

func (h *Contacts) RegisterCreate(api huma.API) { // called by [huma.AutoRegister]
	huma.Post(api, "/",
		handlerWithErrorHandler(h.create, h.ErrorHandler),
		opErrors(http.StatusUnprocessableEntity, http.StatusInternalServerError),
		opStatus(http.StatusCreated),
	)
}

type ContactsCreateOutput struct {
	Body ContactModel
}

func (h *Contacts) create(ctx context.Context, input *struct {
	Body ContactFields
}) (*ContactsCreateOutput, error) {
	contact, err := h.Store.Create(ctx, input.Body.Name, input.Body.Email, input.Body.Phone)
	if err != nil {
		return nil, storeError(err)
	}
	return &ContactsCreateOutput{Body: contactModel(contact)}, nil
}

func (h *Contacts) RegisterUpdate(api huma.API) { // called by [huma.AutoRegister]
	huma.Put(api, "/{id}",
		handlerWithErrorHandler(h.update, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

type ContactsUpdateOutput struct {
	Body ContactModel
}

func (h *Contacts) update(ctx context.Context, input *struct {
	ID   ds.ContactID `path:"id" doc:"ID of the contact to update"`
	Body ContactFields
}) (*ContactsUpdateOutput, error) {
	contact, err := h.Store.Update(ctx, input.ID, input.Body.Name, input.Body.Email, input.Body.Phone)
	if err != nil {
		return nil, storeError(err)
	}
	return &ContactsUpdateOutput{Body: contactModel(contact)}, nil
}

func (h *Contacts) RegisterDelete(api huma.API) { // called by [huma.AutoRegister]
	huma.Delete(api, "/{id}",
		handlerWithErrorHandler(h.del, h.ErrorHandler),
		opErrors(http.StatusInternalServerError),
		opStatus(http.StatusNoContent),
	)
}

func (h *Contacts) del(ctx context.Context, input *struct {
	ID ds.ContactID `path:"id" doc:"ID of the contact to delete"`
}) (*struct{}, error) {
	_, err := h.Store.Delete(ctx, input.ID)
	return nil, err
}

// storeError maps the errors of [ds.ContactsStore] to HTTP errors.
func storeError(err error) error {
	var verr *ds.ValidationError
	switch {
	case errors.As(err, &verr):
		details := make([]error, 0, len(verr.Fields))
		for _, field := range verr.Fields {
			details = append(details, &huma.ErrorDetail{
				Location: "body." + field,
				Message:  "must not be empty",
				Value:    "",
			})
		}
		return huma.Error422UnprocessableEntity("empty contact fields", details...)

	case errors.Is(err, ds.ErrObjectNotFound):
		return huma.Error404NotFound("id not found", err)

	default:
		return err
	}
}
