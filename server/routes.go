package server

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/speakerkit/component"
)

// systemPaths are the routes mounted by RegisterSystemEndpoints.
var systemPaths = map[string]bool{"/alive": true, "/ready": true, "/info": true, "/metrics": true}

var methodRank = map[string]int{"GET": 0, "POST": 1, "PUT": 2, "PATCH": 3, "DELETE": 4}

func rank(method string) int {
	if r, ok := methodRank[method]; ok {
		return r
	}
	return len(methodRank)
}

// Routes lists the mounted routes for the startup summary: API routes by
// path and method, then the system routes.
func (s *Server) Routes() []component.Route {
	mounted := s.engine.Routes()
	slices.SortFunc(mounted, func(a, b gin.RouteInfo) int {
		if sa, sb := systemPaths[a.Path], systemPaths[b.Path]; sa != sb {
			if sa {
				return 1
			}
			return -1
		}
		return cmp.Or(strings.Compare(a.Path, b.Path), cmp.Compare(rank(a.Method), rank(b.Method)))
	})

	routes := make([]component.Route, len(mounted))
	for i, r := range mounted {
		handler := shortHandler(r.Handler)
		if systemPaths[r.Path] {
			handler += " (system)"
		}
		routes[i] = component.Route{Method: r.Method, Path: r.Path, Handler: handler}
	}
	return routes
}

// shortHandler trims Gin's handler names:
// "github.com/kbukum/speakerkit/api.(*Handler).Identify-fm" becomes
// "Handler.Identify" and a closure such as "endpoint.Liveness.func1"
// becomes "liveness".
func shortHandler(name string) string {
	name = strings.TrimSuffix(name, "-fm")
	name = name[strings.LastIndex(name, "/")+1:]
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	parts := strings.Split(name, ".")
	if last := parts[len(parts)-1]; strings.HasPrefix(last, "func") {
		for i := len(parts) - 2; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				return strings.ToLower(parts[i])
			}
		}
	}
	if len(parts) > 1 && strings.ToLower(parts[0]) == parts[0] {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}
