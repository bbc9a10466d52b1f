package dispatch

import (
	"io"

	"github.com/jo-hoe/codex/internal/catalog"
)

// View names understood by a Renderer.
const (
	ViewIndex = "index.html"
	ViewEntry = "entry.html"
	ViewEdit  = "edit.html"
	ViewSaved = "saved.html"
)

// Renderer turns a view name and its page data into markup.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// IndexPage lists every stored entry.
type IndexPage struct {
	Entries []catalog.Entry
}

// EntryPage shows a single entry next to its image.
type EntryPage struct {
	Entry     catalog.Entry
	ImagePath string
}

// EditPage is the create/update form. Entry is the placeholder when no entry
// is stored for SKU yet.
type EditPage struct {
	SKU       string
	Entry     catalog.Entry
	Exists    bool
	HasImage  bool
	ImagePath string
	Action    string
}

// SavedPage confirms a create/update and points the client to the entry view.
type SavedPage struct {
	Entry        catalog.Entry
	Redirect     string
	DelaySeconds int
	ImagePath    string
}
