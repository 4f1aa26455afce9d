// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/lyrx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// setupCommand writes a config file when missing and migrates the configured database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and initialize the database",
		Action: r.Setup,
	}
}

// searchCommand searches the catalog
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "Search LRCLIB by keyword or by track, artist and album",
		ArgsUsage: "[query]",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "track",
				Usage: "Track name",
			},
			&cli.StringFlag{
				Name:  "artist",
				Usage: "Artist name",
			},
			&cli.StringFlag{
				Name:  "album",
				Usage: "Album name",
			},
			&cli.BoolFlag{
				Name:  "lyrics",
				Usage: "Print lyrics with each result",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Search,
	}
}

// detailsCommand fetches one song
func detailsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "details",
		Aliases:   []string{"get"},
		Usage:     "Show a song and its lyrics",
		ArgsUsage: "<id>",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "lrc",
				Usage: "Output synced lyrics as an .lrc file",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path",
			},
		},
		Action: r.Details,
	}
}

func idCommand(name, usage string, action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<id>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Action: action,
	}
}

// favoritesCommand manages the persisted favorites list
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage favorite songs",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List favorites in the order they were added",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.FavoritesList,
			},
			idCommand("add", "Look a song up and add it to favorites", r.FavoritesAdd),
			idCommand("remove", "Remove a song from favorites", r.FavoritesRemove),
			idCommand("toggle", "Add or remove a song", r.FavoritesToggle),
			{
				Name:   "clear",
				Usage:  "Remove every favorite",
				Action: r.FavoritesClear,
			},
			{
				Name:  "export",
				Usage: "Export favorites as csv, markdown, text or json",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, markdown, text, json)",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: stdout)",
					},
				},
				Action: r.FavoritesExport,
			},
			{
				Name:  "import",
				Usage: "Import favorites from a csv or json export",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "File with song ids (csv with an ID column, or json)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent lookups",
						Value: tasks.DefaultWorkers,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Catalog requests per second",
						Value: tasks.DefaultRateLimit,
					},
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "Replace existing favorites instead of merging",
					},
				},
				Action: r.FavoritesImport,
			},
		},
	}
}

// contactCommand sends a contact message or retries undelivered ones
func contactCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "contact",
		Usage: "Send a message to the maintainers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "Your name",
			},
			&cli.StringFlag{
				Name:  "email",
				Usage: "Your email address",
			},
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   "Message (at least 10 characters)",
			},
			&cli.BoolFlag{
				Name:  "retry",
				Usage: "Redeliver messages that failed to send",
			},
		},
		Action: r.Contact,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal UI",
		Action:  r.TUI,
	}
}

// serveCommand runs the web interface
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web interface",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default from config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default from config)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the app in a browser",
			},
		},
		Action: r.Serve,
	}
}
