package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yukikurage/todo-tracker/internal/client"
	"github.com/yukikurage/todo-tracker/internal/tui"
)

func main() {
	defaultURL := os.Getenv("TODO_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	apiURL := flag.String("api", defaultURL, "base URL of the todo API")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(*apiURL, &http.Client{Timeout: 15 * time.Second})
	if err := tui.Run(ctx, api); err != nil {
		log.WithError(err).Fatal("todo-tui exited")
	}
}
