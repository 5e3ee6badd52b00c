package route

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds the upstream call when a route does not set its own.
const DefaultTimeout = 30 * time.Second

// DefaultRetries is the retry budget applied when a route does not set one.
const DefaultRetries = 3

// Route maps a path pattern and method set to a backend target. The target
// is either a single base URL or a named pool resolved through a balancer.
type Route struct {
	// Name identifies the route in logs and metrics.
	Name string

	// Pattern is the path to match. A trailing "*" makes it a literal
	// prefix match; without it the pattern matches only the exact path.
	Pattern string

	// Target is the single backend base URL. Nil when Pool is set.
	Target *url.URL

	// Pool names the balanced instance pool. Empty when Target is set.
	Pool string

	// Methods this route accepts. Defaults to GET.
	Methods []string

	// StripPrefix removes the matched literal prefix from the forwarded path.
	StripPrefix bool

	// Timeout bounds each upstream attempt.
	Timeout time.Duration

	// Retries is the number of additional attempts allowed on retryable
	// upstream failures (timeouts and connection errors).
	Retries int

	// Headers are merged into the forwarded request and win over inbound
	// headers of the same name.
	Headers map[string]string

	// CacheTTL, when positive, makes successful GET responses cacheable.
	CacheTTL time.Duration
}

func (r *Route) matchesPath(path string) bool {
	if strings.HasSuffix(r.Pattern, "*") {
		return strings.HasPrefix(path, strings.TrimSuffix(r.Pattern, "*"))
	}
	return path == r.Pattern
}

func (r *Route) allowsMethod(method string) bool {
	for _, m := range r.Methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// ForwardPath computes the path sent upstream for an inbound path that
// already matched this route. With StripPrefix the matched literal prefix is
// removed and the remaining suffix is forwarded; otherwise the original path
// is forwarded unchanged.
func (r *Route) ForwardPath(path string) string {
	if !r.StripPrefix {
		return path
	}

	prefix := strings.TrimSuffix(r.Pattern, "*")
	suffix := strings.TrimPrefix(path, prefix)

	return "/" + strings.TrimPrefix(suffix, "/")
}

func (r *Route) normalize() {
	if len(r.Methods) == 0 {
		r.Methods = []string{http.MethodGet}
	}
	if r.Timeout <= 0 {
		r.Timeout = DefaultTimeout
	}
	if r.Retries < 0 {
		r.Retries = 0
	}
}
