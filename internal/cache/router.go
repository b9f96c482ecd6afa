package cache

import (
	"net/http"
	"strings"
)

// Router classifies incoming requests by resource category and dispatches:
// data-category paths to the stale-while-revalidate cache, shell resources to
// the cache-first cache, and everything else untouched to the passthrough.
type Router struct {
	dataPrefix  string
	shellPaths  map[string]struct{}
	data        http.Handler
	shell       http.Handler
	passthrough http.Handler
}

// NewRouter builds the dispatcher. shellPaths is the exact set of static
// application resource paths owned by the shell cache.
func NewRouter(dataPrefix string, shellPaths []string, data, shell, passthrough http.Handler) *Router {
	if dataPrefix == "" {
		dataPrefix = "/data/"
	}
	paths := make(map[string]struct{}, len(shellPaths))
	for _, p := range shellPaths {
		paths[p] = struct{}{}
	}
	return &Router{
		dataPrefix:  dataPrefix,
		shellPaths:  paths,
		data:        data,
		shell:       shell,
		passthrough: passthrough,
	}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, rt.dataPrefix):
		rt.data.ServeHTTP(w, r)
	case rt.isShellPath(r.URL.Path):
		rt.shell.ServeHTTP(w, r)
	default:
		rt.passthrough.ServeHTTP(w, r)
	}
}

func (rt *Router) isShellPath(path string) bool {
	if path == "/" {
		path = "/index.html"
	}
	_, ok := rt.shellPaths[path]
	return ok
}

// Passthrough relays a request to the origin without touching any cache; no
// fallback applies, an unreachable origin surfaces as a gateway error.
type Passthrough struct {
	fetcher Fetcher
}

// NewPassthrough wires the origin fetcher.
func NewPassthrough(fetcher Fetcher) *Passthrough {
	return &Passthrough{fetcher: fetcher}
}

func (p *Passthrough) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	entry, err := p.fetcher.Fetch(r.Context(), r.Method, r.URL.Path)
	if err != nil {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
		return
	}
	writeEntry(w, entry)
}
