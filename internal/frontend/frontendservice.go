package frontend

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/jo-hoe/codex/internal/dispatch"
	"github.com/jo-hoe/codex/internal/metrics"
	"github.com/labstack/echo/v4"
)

const (
	ProbePath    = "/probe"
	probeMessage = "codex is running"

	imageFormField  = "image"
	maxMultipartMem = 32 << 20
)

type FrontendService struct {
	dispatcher *dispatch.Dispatcher
}

func NewFrontendService(dispatcher *dispatch.Dispatcher) *FrontendService {
	return &FrontendService{
		dispatcher: dispatcher,
	}
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	e.GET(ProbePath, service.probeHandler)

	// Everything else goes through the dispatcher
	e.Any("/", service.dispatchHandler)
	e.Any("/*", service.dispatchHandler)
}

func (service *FrontendService) probeHandler(ctx echo.Context) error {
	return ctx.String(http.StatusOK, probeMessage)
}

func (service *FrontendService) dispatchHandler(ctx echo.Context) error {
	req := ctx.Request()
	request := dispatch.Request{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  ctx.QueryParams(),
	}
	if req.Method == http.MethodPost || req.Method == http.MethodPut {
		request.Form, request.Image, request.FormErr = readForm(req)
		if request.FormErr != nil {
			slog.Warn("dispatchHandler: failed to read form body",
				"method", req.Method, "path", req.URL.Path, "error", request.FormErr)
		}
	}

	resp := service.dispatcher.Dispatch(req.Context(), request)
	ctx.Set(metrics.RouteKey, resp.Route)

	// Prevent caching so edits are always visible
	service.setNoCache(ctx)
	if resp.Redirect != "" {
		ctx.Response().Header().Set("Refresh",
			fmt.Sprintf("%d; url=%s", dispatch.RedirectDelaySeconds, resp.Redirect))
	}
	return ctx.Blob(resp.Status, resp.ContentType, resp.Body)
}

// readForm decodes an url-encoded or multipart body. Multipart bodies may
// carry the entry image in the "image" part.
func readForm(req *http.Request) (url.Values, []byte, error) {
	mediaType, _, err := mime.ParseMediaType(req.Header.Get(echo.HeaderContentType))
	if err != nil && req.Header.Get(echo.HeaderContentType) != "" {
		return nil, nil, fmt.Errorf("invalid content type: %w", err)
	}

	if !strings.HasPrefix(mediaType, echo.MIMEMultipartForm) {
		if err := req.ParseForm(); err != nil {
			return nil, nil, err
		}
		return req.PostForm, nil, nil
	}

	if err := req.ParseMultipartForm(maxMultipartMem); err != nil {
		return nil, nil, err
	}
	files := req.MultipartForm.File[imageFormField]
	if len(files) == 0 {
		return req.MultipartForm.Value, nil, nil
	}

	src, err := files[0].Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open uploaded image: %w", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Error("readForm: failed to close uploaded file reader", "error", cerr, "filename", files[0].Filename)
		}
	}()
	image, err := io.ReadAll(src)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read uploaded image: %w", err)
	}
	return req.MultipartForm.Value, image, nil
}

func (service *FrontendService) setNoCache(ctx echo.Context) {
	ctx.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	ctx.Response().Header().Set("Pragma", "no-cache")
	ctx.Response().Header().Set("Expires", "0")
}
