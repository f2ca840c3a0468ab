package http

import "context"

type contextKey string

const keyRoute contextKey = "route"

func routeFromContext(ctx context.Context) string {
	if r, ok := ctx.Value(keyRoute).(string); ok {
		return r
	}
	return "unknown"
}

func routeInContext(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, keyRoute, route)
}
