package main

import (
	"context"

	"github.com/desertthunder/lyrx/internal/server"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the web interface until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = int(port)
	}

	if err := r.open(ctx); err != nil {
		return err
	}

	app, err := web.NewApp(r.favorites, r.catalog, r.contact, r.logger)
	if err != nil {
		return err
	}

	addr := cfg.Addr()
	srv := server.NewServer(addr, app.Handler(), r.logger)

	if cmd.Bool("open") {
		go func() {
			if err := shared.OpenBrowser("http://" + addr); err != nil {
				r.logger.Warn("could not open browser", "error", err)
			}
		}()
	}

	return srv.Run(ctx)
}
