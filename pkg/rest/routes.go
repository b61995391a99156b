package rest

import "github.com/gin-gonic/gin"

type HttpMethod int

const (
	GET HttpMethod = iota
	POST
	PUT
	PATCH
)

func (m HttpMethod) String() string {
	switch m {
	case GET:
		return "GET"
	case POST:
		return "POST"
	case PUT:
		return "PUT"
	case PATCH:
		return "PATCH"
	default:
		return "UNKNOWN"
	}
}

type Route struct {
	Method      HttpMethod
	Path        string
	HandlerFunc gin.HandlerFunc
	Group       string
}

func NewRoute(method HttpMethod, group, path string, handler gin.HandlerFunc) Route {
	return Route{
		Method:      method,
		Path:        path,
		Group:       group,
		HandlerFunc: handler,
	}
}

// Register attaches routes to the engine, one router group per distinct group name.
// Middlewares with group "*" apply to the whole engine.
func Register(engine *gin.Engine, middlewares []Middleware, routes []Route) {
	for _, m := range middlewares {
		if m.Group == "*" {
			engine.Use(m.Handler)
		}
	}

	groups := map[string]*gin.RouterGroup{}
	for _, r := range routes {
		group, exists := groups[r.Group]
		if !exists {
			group = engine.Group("/" + r.Group)
			for _, m := range middlewares {
				if m.Group == r.Group {
					group.Use(m.Handler)
				}
			}
			groups[r.Group] = group
		}

		switch r.Method {
		case GET:
			group.GET(r.Path, r.HandlerFunc)
		case POST:
			group.POST(r.Path, r.HandlerFunc)
		case PUT:
			group.PUT(r.Path, r.HandlerFunc)
		case PATCH:
			group.PATCH(r.Path, r.HandlerFunc)
		}
	}
}
