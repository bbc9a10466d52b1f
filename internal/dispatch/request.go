// Package dispatch maps an HTTP method and path onto catalog operations and
// describes the response the transport has to write.
package dispatch

import (
	"net/url"
	"strings"
)

const (
	ContentTypeText = "text/plain; charset=UTF-8"
	ContentTypeHTML = "text/html; charset=UTF-8"

	// RedirectDelaySeconds is how long the confirmation page of a write stays
	// visible before the client navigates to the entry view.
	RedirectDelaySeconds = 3
)

// Request is the transport independent view of an incoming HTTP request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Form holds the decoded body fields of a create/update request.
	Form url.Values
	// FormErr is set when the transport failed to decode the body.
	FormErr error
	// Image is the optional uploaded image of a create/update request.
	Image []byte
}

// Response describes what the transport writes back.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	// Redirect is the location the client should navigate to after a short
	// delay. Empty when no navigation is requested.
	Redirect string
	// Route labels the matched route, for example /index/images/{sku}, or
	// RouteUnmatched.
	Route string
}

// SplitPath splits p on runs of '/' and drops empty segments.
func SplitPath(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
}
