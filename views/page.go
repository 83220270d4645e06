package views

import (
	"embed"
	"html/template"
	"io"
	"net/url"

	ds "github.com/oaiiae/addressbook/datastores"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{ //nolint: gochecknoglobals
	"idPath": idPath,
}).ParseFS(templatesFS, "templates/*.html"))

// idPath escapes id as a single URL path segment.
func idPath(id ds.ContactID) string { return url.PathEscape(string(id)) }

// Page is the view model of the address book page.
type Page struct {
	Filter  string
	Rows    []ds.Contact
	Count   int
	Form    Form
	Editing ds.ContactID
	Notice  string
}

// EmptyMessage is shown in place of the table rows when there are none.
func (p Page) EmptyMessage() string {
	if p.Filter != "" {
		return "No contact matches this name."
	}
	return "No contacts yet."
}

// Render writes the page as HTML. Contact text is escaped by [template].
func Render(w io.Writer, p Page) error {
	return templates.ExecuteTemplate(w, "page.html", p)
}
