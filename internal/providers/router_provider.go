package providers

import (
	"net/http"
	"zoblogs/internal/structures"
)

// Body of every 405 answered by the router, matching the API error shape.
const methodNotAllowedBody = `{"error":"Method Not Allowed"}`

type RouterProviderInterface interface {
	Get(pattern string, handler http.Handler)
	Post(pattern string, handler http.Handler)
	GetRoutes() []structures.Route
}

type RouterProvider struct {
	routes []structures.Route
}

func (rp *RouterProvider) Get(pattern string, handler http.Handler) {
	rp.add(http.MethodGet, pattern, handler)
}

func (rp *RouterProvider) Post(pattern string, handler http.Handler) {
	rp.add(http.MethodPost, pattern, handler)
}

func (rp *RouterProvider) add(method, pattern string, handler http.Handler) {
	rp.routes = append(rp.routes, structures.Route{
		Url:     pattern,
		Handler: methodHandler(method, handler),
	})
}

// GetRoutes returns the routes in registration order.
func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{}
}

// methodHandler lets one method through to handler. Patterns are registered
// without a method so wrong-method requests reach here and get a JSON 405.
func methodHandler(method string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusMethodNotAllowed)
			_, _ = w.Write([]byte(methodNotAllowedBody))
			return
		}
		handler.ServeHTTP(w, r)
	})
}
