package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/shippedtoday/pkg/app"
	"github.com/wadjakorntonsri/shippedtoday/pkg/config"
	"github.com/wadjakorntonsri/shippedtoday/pkg/logger"
)

var mux http.Handler

func init() {
	cfg := config.Load()

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}

	// Note: On Vercel, local files are ephemeral and instances do not share
	// memory. Use a remote DATABASE_URL (Turso/Postgres) and REDIS_ADDR so
	// the limits hold across instances. App.Run never starts here; without
	// Redis the memory guard relies on its inline sweeps instead of the
	// janitor.
	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		panic(err)
	}
	mux = a.Handler
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
