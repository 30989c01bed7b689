package obs

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type routePatternKey struct{}

// WithRoutePattern stores the matched router pattern on the context.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext extracts the route pattern from context if present.
func RoutePatternFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(routePatternKey{}).(string); ok {
		return v
	}
	return ""
}

// RouteLabel names the route r was served by, for metric labels and span
// names. Call it after the router ran: chi fills the pattern while routing,
// so middleware mounted above the router only sees it afterwards. Unmatched
// paths collapse into "unmatched" to keep label cardinality bounded.
func RouteLabel(r *http.Request) string {
	if route := RoutePatternFromContext(r.Context()); route != "" {
		return route
	}
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if route := rc.RoutePattern(); route != "" {
			return route
		}
	}
	return "unmatched"
}
