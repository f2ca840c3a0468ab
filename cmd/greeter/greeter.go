package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/greetcount/config"
	handler "github.com/unkn0wn-root/greetcount/handler/http"
	"github.com/unkn0wn-root/greetcount/internal/server"
)

const component = "greeter"

func main() {
	cfg, err := config.FromEnv(os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, flush, err := server.NewLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	router := handler.GreeterRouter(handler.Config{
		Component:  component,
		Logger:     logger,
		Registerer: prometheus.DefaultRegisterer,
		RateLimit:  cfg.RateLimit,
	})

	err = server.Server{
		Component:     component,
		Addr:          cfg.Addr(),
		Handler:       router,
		TelemetryAddr: cfg.TelemetryAddr,
		Logger:        logger,
	}.Run(context.Background())
	flush()
	if err != nil {
		os.Exit(1)
	}
}
