package views

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"sync"

	ds "github.com/oaiiae/addressbook/datastores"
)

// Handler serves the address book page for a single user.
type Handler struct {
	mu     sync.Mutex
	editor Editor
	logger *slog.Logger
	mux    *http.ServeMux
}

// Middleware wraps the handler of the route registered with pattern.
type Middleware func(pattern string, next http.Handler) http.Handler

// NewHandler returns the HTML editor of store. Deletions are confirmed
// by the browser, which submits confirm=yes along with the form.
// The first middleware is the outermost.
func NewHandler(store ds.ContactsStore, logger *slog.Logger, middlewares ...Middleware) *Handler {
	h := &Handler{
		editor: Editor{Store: store, Confirmer: ctxconfirm{}},
		logger: logger,
		mux:    http.NewServeMux(),
	}
	for pattern, fn := range map[string]http.HandlerFunc{
		"GET /{$}":          h.page,
		"POST /save":        h.save,
		"POST /edit/{id}":   h.edit,
		"POST /cancel":      h.cancel,
		"POST /delete/{id}": h.del,
	} {
		var handler http.Handler = fn
		for _, mw := range slices.Backward(middlewares) {
			handler = mw(pattern, handler)
		}
		h.mux.Handle(pattern, handler)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) { h.mux.ServeHTTP(w, r) }

func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	p := h.editor.Page(r.URL.Query().Get("q"))
	h.mu.Unlock()

	var buf bytes.Buffer
	err := Render(&buf, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	err := h.editor.Submit(r.Context(), Form{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
		Phone: r.PostFormValue("phone"),
	})
	h.mu.Unlock()
	h.back(w, r, err)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	err := h.editor.Edit(r.Context(), ds.ContactID(r.PathValue("id")))
	h.mu.Unlock()
	h.back(w, r, err)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.editor.Cancel()
	h.mu.Unlock()
	h.back(w, r, nil)
}

func (h *Handler) del(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithValue(r.Context(), ctxconfirm{}, r.PostFormValue("confirm") == "yes")
	h.mu.Lock()
	_, err := h.editor.Delete(ctx, ds.ContactID(r.PathValue("id")))
	h.mu.Unlock()
	h.back(w, r, err)
}

// back redirects to the page, keeping the filter of the submitted form.
func (h *Handler) back(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	target := "/"
	if q := r.PostFormValue("q"); q != "" {
		target += "?" + url.Values{"q": {q}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.LogAttrs(r.Context(), slog.LevelError, "error occurred",
		slog.String("path", r.URL.Path), slog.Any("err", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// ctxconfirm is a [context.Context] key holding the user's answer to
// the confirmation prompt, and the [Confirmer] reading it.
type ctxconfirm struct{}

func (key ctxconfirm) Confirm(ctx context.Context, _ string) bool {
	ok, _ := ctx.Value(key).(bool)
	return ok
}
