package views

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ds "github.com/oaiiae/addressbook/datastores"
)

func post(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler(t *testing.T) {
	store := ds.NewContactsInmem(new(ds.SlotInmem))
	store.Load(context.Background())
	h := NewHandler(store, slog.New(slog.DiscardHandler))

	rec := get(h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No contacts yet.")

	rec = post(h, "/save", url.Values{"name": {"Ana"}, "email": {"ana@x.com"}, "phone": {"111"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	rec = post(h, "/save", url.Values{"name": {"Bruno"}, "email": {"b@x.com"}, "phone": {"222"}, "q": {"an"}})
	assert.Equal(t, "/?q=an", rec.Header().Get("Location"))
	require.Equal(t, 2, store.Count())

	rec = get(h, "/?q=an")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ana")
	assert.NotContains(t, rec.Body.String(), "Bruno")

	var ana ds.Contact
	for c := range store.List("ana") {
		ana = c
	}

	t.Run("edit then update", func(t *testing.T) {
		post(h, "/edit/"+string(ana.ID), nil)
		rec := get(h, "/")
		assert.Contains(t, rec.Body.String(), "Update contact")

		post(h, "/save", url.Values{"name": {"Ana Maria"}, "email": {"am@x.com"}, "phone": {"111"}})
		got, err := store.Get(context.Background(), ana.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", got.Name)
		assert.Equal(t, 2, store.Count())
	})

	t.Run("delete requires confirmation", func(t *testing.T) {
		post(h, "/delete/"+string(ana.ID), nil)
		assert.Equal(t, 2, store.Count())

		rec := post(h, "/delete/"+string(ana.ID), url.Values{"confirm": {"yes"}})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, 1, store.Count())
	})

	t.Run("validation notice", func(t *testing.T) {
		post(h, "/save", url.Values{"name": {"Carla"}})
		rec := get(h, "/")
		assert.Contains(t, rec.Body.String(), "Please fill in all fields.")
		assert.Contains(t, rec.Body.String(), `value="Carla"`)

		post(h, "/cancel", nil)
		assert.NotContains(t, get(h, "/").Body.String(), "Please fill in all fields.")
	})

	t.Run("unknown route", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(h, "/nope").Code)
	})
}

func TestHandlerForeignIDs(t *testing.T) {
	ctx := context.Background()
	slot := new(ds.SlotInmem)
	require.NoError(t, slot.Set(ctx, ds.DefaultSlotKey, []byte(
		`[{"id":"a/b?c","name":"Ana","email":"a","phone":"1"},{"id":"1700000000000","name":"Bruno","email":"b","phone":"2"}]`)))
	store := ds.NewContactsInmem(slot)
	store.Load(ctx)
	h := NewHandler(store, slog.New(slog.DiscardHandler))

	body := get(h, "/").Body.String()
	assert.Contains(t, body, `action="/edit/a%2Fb%3Fc"`)
	assert.Contains(t, body, `action="/delete/a%2Fb%3Fc"`)

	post(h, "/edit/a%2Fb%3Fc", nil)
	assert.Contains(t, get(h, "/").Body.String(), "Update contact")
	post(h, "/cancel", nil)

	rec := post(h, "/delete/a%2Fb%3Fc", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, err := store.Get(ctx, "a/b?c")
	require.ErrorIs(t, err, ds.ErrObjectNotFound)
	assert.Equal(t, 1, store.Count())
}

func TestHandlerMiddlewares(t *testing.T) {
	store := ds.NewContactsInmem(new(ds.SlotInmem))
	store.Load(context.Background())

	var calls []string
	trace := func(name string) Middleware {
		return func(pattern string, next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls = append(calls, name+" "+pattern)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := NewHandler(store, slog.New(slog.DiscardHandler), trace("outer"), trace("inner"))

	get(h, "/")
	post(h, "/save", url.Values{"name": {"Ana"}, "email": {"a"}, "phone": {"1"}})
	assert.Equal(t, []string{
		"outer GET /{$}", "inner GET /{$}",
		"outer POST /save", "inner POST /save",
	}, calls)
	assert.Equal(t, 1, store.Count())
}
