package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/unkn0wn-root/greetcount"
)

// FailurePolicy decides what a counting route answers when the counter fails.
type FailurePolicy int

const (
	// FailureHang writes no response: the request stays open until the client
	// gives up or the server shuts down, then the connection is aborted.
	FailureHang FailurePolicy = iota
	// FailureRespond answers 503 with an error payload.
	FailureRespond
)

// ParseFailurePolicy maps "hang" and "error" to a FailurePolicy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "hang":
		return FailureHang, nil
	case "error":
		return FailureRespond, nil
	}
	return 0, fmt.Errorf("unknown failure policy %q", s)
}

// Count increments the counter for route and responds with the new count.
func Count(
	ctr greetcount.Counter,
	route greetcount.Route,
	policy FailurePolicy,
	logger greetcount.Logger,
) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		n, err := ctr.Hit(ctx, route.Path)
		if err != nil {
			logger.Error("count failed", greetcount.Fields{"route": route.Name, "err": err})

			if policy == FailureRespond {
				respondError(w, 0, wrapError(ErrUnavailable, err.Error()))
				return
			}

			<-ctx.Done()
			panic(http.ErrAbortHandler)
		}

		respondJSON(w, http.StatusOK, &payloadCount{
			CountAccess: n,
			Message:     route.Message,
		})
	}
}

type payloadCount struct {
	CountAccess int64  `json:"countAccess"`
	Message     string `json:"message"`
}
