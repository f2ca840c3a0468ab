package http

import (
	"context"
	"net/http"
)

// Greet responds with a fixed message.
func Greet(message string) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, &payloadGreeting{Message: message})
	}
}

type payloadGreeting struct {
	Message string `json:"message"`
}
