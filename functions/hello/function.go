// Package hello exposes the service as an HTTP Cloud Function. The function
// serves the same router as the standalone server, so the greeting is at
// /api/v1/hello/world on the function URL.
package hello

import (
	"context"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/janisto/football-api/internal/app"
	"github.com/janisto/football-api/internal/platform/config"
	applog "github.com/janisto/football-api/internal/platform/logging"
)

// Version can be overridden at build time like the server binary's.
var Version = "dev"

var (
	handlerOnce sync.Once
	handler     http.Handler
)

func init() {
	functions.HTTP("Hello", Serve)
}

// Serve is the function entry point. The router is built on first use from
// environment configuration; the instance has no flags or config directory.
func Serve(w http.ResponseWriter, r *http.Request) {
	handlerOnce.Do(func() { handler = build(context.Background()) })
	handler.ServeHTTP(w, r)
}

func build(ctx context.Context) http.Handler {
	opts := app.Options{Version: Version}
	cfg, err := config.Load(nil)
	if err != nil {
		applog.LogError(ctx, "invalid function config, using defaults", err)
		return app.New(opts)
	}
	if err := applog.SetLevel(cfg.Log.Level); err != nil {
		applog.LogError(ctx, "apply log level", err)
	}
	opts.AllowedOrigins = cfg.CORS.AllowedOrigins
	opts.MaxBodyBytes = cfg.Server.MaxBodyBytes
	return app.New(opts)
}
