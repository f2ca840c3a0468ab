package greetcount

// Route ties a symbolic name to a URL path and its greeting. The path is also
// the counter key.
type Route struct {
	Name    string
	Path    string
	Message string
}

var (
	RouteBase    = Route{Name: "BASE", Path: "/", Message: "Hello, World!"}
	RouteExample = Route{Name: "EXAMPLE", Path: "/example", Message: "EXAMPLE ROUTE!"}
)

// Routes returns the counted routes in registration order.
func Routes() []Route {
	return []Route{RouteBase, RouteExample}
}
