package main

import (
	"context"
	"errors"

	"github.com/germanamz/ultima/pkg/engine"
	"github.com/germanamz/ultima/pkg/tools/mcpserver"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// transport runs an MCP server until its peer disconnects or ctx is done.
type transport func(s *mcpserver.MCPServer, ctx context.Context) error

func newServeCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the engine's tools over MCP on stdio",
		Long: `Starts a Model Context Protocol server on stdin/stdout exposing generate,
status_report, list_models, chat, dolphin_run and usage. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}

			return serve(cmd.Context(), eng, a.log, watch, (*mcpserver.MCPServer).ServeStdio)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch-credentials", true, "reload Claude credentials when the file changes")

	return cmd
}

// serve exposes the engine's tools through run. The credentials watcher is
// best effort and never stops the server.
func serve(ctx context.Context, eng *engine.Engine, log *zap.Logger, watch bool, run transport) error {
	srv := mcpserver.New("ultima", engine.Version, log.Named("mcp"))
	srv.RegisterToolBox(eng.Tools())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return run(srv, gctx)
	})

	if watch && eng.Claude() != nil {
		g.Go(func() error {
			if err := eng.WatchCredentials(gctx); err != nil {
				log.Warn("credentials watcher stopped", zap.Error(err))
			}

			return nil
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
