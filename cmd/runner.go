package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/contact"
	"github.com/desertthunder/lyrx/internal/favorites"
	"github.com/desertthunder/lyrx/internal/kv"
	"github.com/desertthunder/lyrx/internal/repositories"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Storage and services are opened on first use by [Runner.open], so commands such as setup
// can run before a config file exists.
type Runner struct {
	config     *shared.Config
	configPath string
	store      kv.Store
	favorites  *favorites.Store
	catalog    services.Catalog
	contact    *contact.Service
	engine     *tasks.LookupEngine
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Any dependency left nil is built from Config when a command first needs it.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Store      kv.Store
	Catalog    services.Catalog
	Contact    *contact.Service
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		catalog:    opts.Catalog,
		contact:    opts.Contact,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, searchCommand, detailsCommand, favoritesCommand, contactCommand, tuiCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the config named by the root --config flag. It runs before every command.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	config, err := shared.ResolveConfig(r.configPath)
	if err != nil {
		return ctx, err
	}
	r.config = config

	level := config.Log.Level
	if l := cmd.String("log-level"); l != "" {
		level = l
	}
	if err := shared.SetLogLevelString(r.logger, level); err != nil {
		return ctx, err
	}
	return ctx, nil
}

// SetLogger replaces the logger used by the runner and by any dependency opened afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// open builds the storage backend, favorites store, catalog client and contact service.
// It is a no-op after the first successful call.
func (r *Runner) open(ctx context.Context) error {
	if r.favorites != nil {
		return nil
	}

	if r.store == nil {
		store, err := kv.Open(ctx, r.config.Storage)
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", r.config.Storage.Driver, err)
		}
		r.store = kv.WithNamespace(store, r.config.Storage.Namespace)
	}

	if r.catalog == nil {
		r.catalog = services.NewCatalogFromConfig(r.config.Catalog)
	}

	if r.contact == nil {
		notifier := contact.NewNotifierFromConfig(r.config.Contact, r.logger)

		var outbox contact.Outbox
		if sqlStore, ok := unwrapSQL(r.store); ok {
			outbox = repositories.NewContactRepository(sqlStore.DB(), sqlStore.Driver())
		}
		r.contact = contact.NewService(notifier, outbox, r.logger)
	}

	r.engine = tasks.NewLookupEngine(r.catalog, r.logger)
	r.favorites = favorites.New(ctx, r.store, favorites.WithLogger(r.logger))
	return nil
}

// unwrapSQL finds the [kv.SQLStore] behind any namespace wrappers.
func unwrapSQL(s kv.Store) (*kv.SQLStore, bool) {
	for s != nil {
		switch v := s.(type) {
		case *kv.SQLStore:
			return v, true
		case interface{ Unwrap() kv.Store }:
			s = v.Unwrap()
		default:
			return nil, false
		}
	}
	return nil, false
}

// Close releases the storage backend.
func (r *Runner) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
