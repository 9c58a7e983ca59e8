package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/janisto/football-api/internal/app"
	"github.com/janisto/football-api/internal/http/v1/routes"
	"github.com/janisto/football-api/internal/platform/config"
	applog "github.com/janisto/football-api/internal/platform/logging"
	"github.com/janisto/football-api/internal/platform/server"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func main() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

// run executes the CLI and returns the process exit code. Buffered log
// entries are flushed before it returns, since os.Exit skips deferred calls.
func run(ctx context.Context, args []string) int {
	defer func() {
		// Syncing stdout fails on terminals and pipes with EINVAL/ENOTTY; nothing is lost.
		if err := applog.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) && !errors.Is(err, syscall.ENOTTY) {
			fmt.Fprintf(os.Stderr, "logger sync error: %v\n", err)
		}
	}()

	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		applog.LogError(ctx, "command failed", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "football-api",
		Short:         "Football API HTTP service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server (default)",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		newOpenAPICmd(),
		&cobra.Command{
			Use:   "config",
			Short: "Print the resolved configuration as YAML",
			Args:  cobra.NoArgs,
			RunE:  runConfig,
		},
	)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	loader, err := config.NewLoader(cmd.Flags())
	if err != nil {
		return err
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	if err := applog.SetLevel(cfg.Log.Level); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if loader.File() != "" {
		go func() {
			err := loader.Watch(ctx, func(next *config.Config) {
				if err := applog.SetLevel(next.Log.Level); err != nil {
					applog.LogError(ctx, "apply log level", err)
					return
				}
				applog.LogInfo(ctx, "log level applied", zap.String("level", next.Log.Level))
			})
			if err != nil {
				applog.LogError(ctx, "config watcher stopped", err)
			}
		}()
	}

	handler := app.New(app.Options{
		Version:        Version,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	})
	srv := server.New(cfg.Server, handler)
	applog.LogInfo(ctx, "starting server",
		zap.String("version", Version),
		zap.String("environment", cfg.Environment),
		zap.String("level", cfg.Log.Level),
	)
	return server.Run(ctx, srv, cfg.Server.ShutdownTimeout)
}

func newOpenAPICmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the v1 OpenAPI document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api := routes.New(chi.NewRouter(), Version)
			var (
				out []byte
				err error
			)
			if asJSON {
				if out, err = json.MarshalIndent(api.OpenAPI(), "", "  "); err == nil {
					out = append(out, '\n')
				}
			} else {
				out, err = api.OpenAPI().YAML()
			}
			if err != nil {
				return fmt.Errorf("render openapi: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of YAML")
	return cmd
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
