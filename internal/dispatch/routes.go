package dispatch

import (
	"net/http"
	"strings"
)

const (
	groupIndex = "index"
	groupEdit  = "edit"

	segmentImages = "images"

	// RouteUnmatched labels requests that match no route.
	RouteUnmatched = "unmatched"
)

type segment struct {
	literal string
	isSKU   bool
}

func lit(s string) segment { return segment{literal: s} }

var skuParam = segment{isSKU: true}

type handlerFunc func(d *Dispatcher, c *call) outcome

// route matches the segments following the group name. Segments beyond the
// pattern are ignored.
type route struct {
	pattern []segment
	// exact routes only match when no further segments follow.
	exact    bool
	handlers map[string]handlerFunc
	// any handles every method not listed in handlers.
	any handlerFunc
}

var routeTable = map[string][]route{
	groupIndex: {
		{
			pattern:  []segment{lit(segmentImages), skuParam},
			handlers: map[string]handlerFunc{http.MethodGet: (*Dispatcher).serveImage},
		},
		{
			pattern: []segment{lit(segmentImages)},
			exact:   true,
			any:     (*Dispatcher).missingSKU,
		},
		{
			pattern:  []segment{skuParam},
			handlers: map[string]handlerFunc{http.MethodGet: (*Dispatcher).serveEntry},
		},
		{
			exact:    true,
			handlers: map[string]handlerFunc{http.MethodGet: (*Dispatcher).serveEntries},
		},
	},
	groupEdit: {
		{
			pattern: []segment{skuParam},
			handlers: map[string]handlerFunc{
				http.MethodGet:    (*Dispatcher).serveEditForm,
				http.MethodPost:   (*Dispatcher).saveEntry,
				http.MethodPut:    (*Dispatcher).saveEntry,
				http.MethodDelete: (*Dispatcher).deleteEntry,
			},
		},
		{
			exact: true,
			any:   (*Dispatcher).missingSKU,
		},
	},
}

// match resolves the route for the segments that follow the group name and
// returns the captured sku, if any.
func match(routes []route, rest []string) (*route, string, bool) {
	for i := range routes {
		r := &routes[i]
		if len(rest) < len(r.pattern) || (r.exact && len(rest) != len(r.pattern)) {
			continue
		}
		sku := ""
		matched := true
		for j, seg := range r.pattern {
			if seg.isSKU {
				sku = rest[j]
				continue
			}
			if rest[j] != seg.literal {
				matched = false
				break
			}
		}
		if matched {
			return r, sku, true
		}
	}
	return nil, "", false
}

// group splits off the first segment. An empty path belongs to the index.
func group(segments []string) (string, []string) {
	if len(segments) == 0 {
		return groupIndex, nil
	}
	return segments[0], segments[1:]
}

func (r *route) handlerFor(method string) (handlerFunc, bool) {
	if h, ok := r.handlers[method]; ok {
		return h, true
	}
	if r.any != nil {
		return r.any, true
	}
	return nil, false
}

// label names the route for metrics, for example /edit/{sku}.
func (r *route) label(group string) string {
	var b strings.Builder
	b.WriteString("/" + group)
	for _, seg := range r.pattern {
		if seg.isSKU {
			b.WriteString("/{sku}")
			continue
		}
		b.WriteString("/" + seg.literal)
	}
	return b.String()
}
