package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jo-hoe/codex/internal/backend/assets"
	"github.com/jo-hoe/codex/internal/backend/database"
	"github.com/jo-hoe/codex/internal/catalog"
)

const msgMissingSKU = "missing SKU in query path"

// Store is the entry persistence the dispatcher delegates to.
type Store interface {
	Exists(ctx context.Context, sku string) (bool, error)
	Get(ctx context.Context, sku string) (catalog.Entry, error)
	Upsert(ctx context.Context, entry catalog.Entry) error
	Delete(ctx context.Context, sku string) error
	List(ctx context.Context) ([]catalog.Entry, error)
}

// ImageSource reads the image stored for an entry and stages uploads. A
// staged image replaces the stored one only when it is committed.
type ImageSource interface {
	Exists(sku string) bool
	Read(sku string) (assets.Image, error)
	Stage(sku string, data io.Reader) (assets.StagedImage, error)
}

// Dispatcher answers every request with exactly one Response.
type Dispatcher struct {
	store             Store
	images            ImageSource
	renderer          Renderer
	maxThumbnailWidth int
}

func New(store Store, images ImageSource, renderer Renderer, maxThumbnailWidth int) *Dispatcher {
	return &Dispatcher{
		store:             store,
		images:            images,
		renderer:          renderer,
		maxThumbnailWidth: maxThumbnailWidth,
	}
}

type call struct {
	ctx context.Context
	req Request
	sku string
}

// outcome is the result of a handler before it is rendered.
type outcome struct {
	status      int
	view        string
	data        any
	text        string
	blob        []byte
	contentType string
	redirect    string
	route       string
}

func textOutcome(status int, text string) outcome {
	return outcome{status: status, text: text}
}

func viewOutcome(view string, data any) outcome {
	return outcome{status: http.StatusOK, view: view, data: data}
}

func internalError(err error) outcome {
	return textOutcome(http.StatusInternalServerError, "internal error: "+err.Error())
}

// Dispatch resolves the route of req and runs its handler.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	out, label := d.route(ctx, req)
	resp := d.respond(out)
	resp.Route = label
	return resp
}

// route runs the handler of req and returns its outcome together with the
// label of the matched route.
func (d *Dispatcher) route(ctx context.Context, req Request) (outcome, string) {
	name, rest := group(SplitPath(req.Path))
	routes, ok := routeTable[name]
	if !ok {
		return textOutcome(http.StatusNotFound, fmt.Sprintf("no route for '%s'", req.Path)), RouteUnmatched
	}

	r, sku, ok := match(routes, rest)
	if !ok {
		return textOutcome(http.StatusNotFound, fmt.Sprintf("no route for '%s'", req.Path)), RouteUnmatched
	}
	label := r.label(name)
	handler, ok := r.handlerFor(req.Method)
	if !ok {
		return textOutcome(http.StatusBadRequest,
			fmt.Sprintf("HTTP/%s unsupported for '%s'", req.Method, req.Path)), label
	}
	if sku != "" {
		if err := catalog.ValidateSKU(sku); err != nil {
			return textOutcome(http.StatusBadRequest, err.Error()), label
		}
	}
	return handler(d, &call{ctx: ctx, req: req, sku: sku}), label
}

func (d *Dispatcher) respond(out outcome) Response {
	resp := Response{Status: out.status, Redirect: out.redirect}
	switch {
	case out.view != "":
		var buf bytes.Buffer
		if err := d.renderer.Render(&buf, out.view, out.data); err != nil {
			slog.Error("failed to render view", "view", out.view, "error", err)
			return Response{
				Status:      http.StatusInternalServerError,
				ContentType: ContentTypeText,
				Body:        []byte("internal error: " + err.Error()),
			}
		}
		resp.ContentType = ContentTypeHTML
		resp.Body = buf.Bytes()
	case out.blob != nil:
		resp.ContentType = out.contentType
		resp.Body = out.blob
	default:
		resp.ContentType = ContentTypeText
		resp.Body = []byte(out.text)
	}
	if resp.Status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", resp.Status, "body", string(resp.Body))
	}
	return resp
}

func (d *Dispatcher) missingSKU(*call) outcome {
	return textOutcome(http.StatusBadRequest, msgMissingSKU)
}

func (d *Dispatcher) serveEntries(c *call) outcome {
	entries, err := d.store.List(c.ctx)
	if err != nil {
		return internalError(err)
	}
	return viewOutcome(ViewIndex, IndexPage{Entries: entries})
}

func (d *Dispatcher) serveEntry(c *call) outcome {
	entry, err := d.store.Get(c.ctx, c.sku)
	if errors.Is(err, database.ErrEntryNotFound) {
		return textOutcome(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return internalError(err)
	}
	return viewOutcome(ViewEntry, EntryPage{Entry: entry, ImagePath: "/" + assets.ImagePath(c.sku)})
}

func (d *Dispatcher) serveImage(c *call) outcome {
	img, err := d.images.Read(c.sku)
	if errors.Is(err, assets.ErrImageNotFound) {
		return textOutcome(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return internalError(err)
	}

	raw := c.req.Query.Get("width")
	if raw == "" {
		return outcome{status: http.StatusOK, blob: img.Data, contentType: img.ContentType}
	}
	width, err := strconv.Atoi(raw)
	if err != nil || width < 1 || width > d.maxThumbnailWidth {
		return textOutcome(http.StatusBadRequest,
			fmt.Sprintf("invalid thumbnail width '%s', expected 1 to %d", raw, d.maxThumbnailWidth))
	}
	thumb, err := assets.Thumbnail(img.Data, width)
	if errors.Is(err, assets.ErrImageTooLarge) {
		return textOutcome(http.StatusBadRequest, fmt.Sprintf("thumbnail for %s: %v", c.sku, err))
	}
	if err != nil {
		return internalError(fmt.Errorf("thumbnail for %s: %w", c.sku, err))
	}
	return outcome{status: http.StatusOK, blob: thumb, contentType: "image/png"}
}

func (d *Dispatcher) serveEditForm(c *call) outcome {
	exists, err := d.store.Exists(c.ctx, c.sku)
	if err != nil {
		return internalError(err)
	}
	var entry catalog.Entry
	if exists {
		entry, err = d.store.Get(c.ctx, c.sku)
		if errors.Is(err, database.ErrEntryNotFound) {
			// deleted between the two calls
			exists, err = false, nil
		}
		if err != nil {
			return internalError(err)
		}
	}
	return viewOutcome(ViewEdit, EditPage{
		SKU:       c.sku,
		Entry:     entry,
		Exists:    exists,
		HasImage:  exists && d.images.Exists(c.sku),
		ImagePath: "/" + assets.ImagePath(c.sku),
		Action:    "/edit/" + c.sku,
	})
}

func (d *Dispatcher) saveEntry(c *call) outcome {
	if c.req.FormErr != nil {
		return internalError(fmt.Errorf("malformed form body: %w", c.req.FormErr))
	}
	entry, err := catalog.ParseForm(c.req.Form)
	if err != nil {
		return textOutcome(http.StatusBadRequest, err.Error())
	}
	switch entry.SKU {
	case "":
		entry.SKU = c.sku
	case c.sku:
	default:
		fieldErr := &catalog.InvalidFieldError{
			Field: catalog.FieldSKU,
			Value: entry.SKU,
			Err:   fmt.Errorf("does not match SKU '%s' of the path", c.sku),
		}
		return textOutcome(http.StatusBadRequest, fieldErr.Error())
	}

	// An uploaded image becomes visible only once the entry is stored.
	var staged assets.StagedImage
	if len(c.req.Image) > 0 {
		staged, err = d.images.Stage(entry.SKU, bytes.NewReader(c.req.Image))
		if err != nil {
			return internalError(err)
		}
		defer staged.Discard()
	}
	if err := d.store.Upsert(c.ctx, entry); err != nil {
		return internalError(err)
	}
	if staged != nil {
		if err := staged.Commit(); err != nil {
			return internalError(fmt.Errorf("entry %s saved without its image: %w", entry.SKU, err))
		}
	}
	slog.Info("entry saved", "sku", entry.SKU, "image_bytes", len(c.req.Image))

	redirect := "/" + assets.EntryPath(entry.SKU)
	out := viewOutcome(ViewSaved, SavedPage{
		Entry:        entry,
		Redirect:     redirect,
		DelaySeconds: RedirectDelaySeconds,
		ImagePath:    "/" + assets.ImagePath(entry.SKU),
	})
	out.redirect = redirect
	return out
}

// deleteEntry reports store failures in the body and keeps the status at 200.
func (d *Dispatcher) deleteEntry(c *call) outcome {
	if err := d.store.Delete(c.ctx, c.sku); err != nil {
		slog.Error("failed to delete entry", "sku", c.sku, "error", err)
		return textOutcome(http.StatusOK, fmt.Sprintf("delete entry SKU#%s failed: %v", c.sku, err))
	}
	slog.Info("entry deleted", "sku", c.sku)
	return textOutcome(http.StatusOK, fmt.Sprintf("delete entry SKU#%s success", c.sku))
}
