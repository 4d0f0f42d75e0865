/* commands.go
 * Contains the sub commands of the cli: serve runs the web server (and the discord bot when a token is configured),
 * bot runs only the discord bot, fetch pulls events from upstream, show prints an event from a local json file and
 * config init writes a config file
 * Authors: Zachary Bower
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	api "pickleball-brackets/api/api"
	"pickleball-brackets/api/bracket"
	"pickleball-brackets/api/external"
	"pickleball-brackets/api/session"
	"pickleball-brackets/bot"
	"pickleball-brackets/config"
	"pickleball-brackets/web"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// refresher is the part of the api the refresh loop needs
type refresher interface {
	RefreshAll(ctx context.Context) error
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server, and the discord bot if a token is configured",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags, func(cfg *config.Config) {
				if addr != "" {
					cfg.Server.Addr = addr
				}
			})
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on, overrides the config file")
	return cmd
}

func newBotCmd(flags *rootFlags) *cobra.Command {
	var event string
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run only the discord bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags, func(cfg *config.Config) {
				if event != "" {
					cfg.Bot.Event = event
				}
			})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newAPI(ctx, cfg)
			if err != nil {
				return err
			}
			defer disconnect(a)

			b, err := bot.NewBot(cfg.Bot.Token, a, cfg.Bot.Event)
			if err != nil {
				return err
			}
			return ignoreCanceled(b.Run(ctx))
		},
	}
	cmd.Flags().StringVar(&event, "event", "", "Event the bot serves, overrides the config file")
	return cmd
}

func newShowCmd() *cobra.Command {
	var filter string
	var watch bool
	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print an event from a json file",
		Long: `Print an event from a json file holding either an upstream response or bare event data.
With --watch the event is printed again every time the file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !watch {
				snapshot, err := external.LoadSnapshotFile(args[0])
				if err != nil {
					return err
				}
				return printSnapshot(out, snapshot, filter)
			}

			err := external.WatchSnapshotFile(cmd.Context(), args[0], func(snapshot *bracket.Snapshot) {
				if err := printSnapshot(out, snapshot, filter); err != nil {
					log.Printf("failed to print event: %v", err)
				}
			})
			return ignoreCanceled(err)
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Only show matches of players matching the filter")
	cmd.Flags().BoolVar(&watch, "watch", false, "Print the event again when the file changes")
	return cmd
}

func newFetchCmd(flags *rootFlags) *cobra.Command {
	var tournamentID int
	var outDir string
	cmd := &cobra.Command{
		Use:   "fetch <event>...",
		Short: "Fetch events from upstream and print them or save them as json files",
		Long: `Fetch events straight from upstream, bypassing the cache.
With --out every event is written to <dir>/<event>.json, ready for the show command.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, func(cfg *config.Config) {
				if tournamentID > 0 {
					cfg.Upstream.TournamentID = tournamentID
				}
			})
			if err != nil {
				return err
			}

			client := external.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.RequestsPerSecond, cfg.Upstream.Burst)
			snapshots, err := client.FetchEvents(cmd.Context(), cfg.Upstream.TournamentID, args)
			if err != nil {
				return fmt.Errorf("failed to fetch events: %w", err)
			}

			for _, snapshot := range snapshots {
				if outDir == "" {
					if err := printSnapshot(cmd.OutOrStdout(), snapshot, ""); err != nil {
						return err
					}
					continue
				}
				path, err := saveSnapshot(outDir, snapshot)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", snapshot.Name, path)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&tournamentID, "tournament", 0, "Tournament id, overrides the config file")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory to save the events to instead of printing them")
	return cmd
}

func newConfigCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.DefaultConfig().Save(flags.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", flags.configPath)
			return nil
		},
	})
	return cmd
}

// runServe loads the configured events and runs the web server, the bot and the refresh loop until ctx is done
func runServe(ctx context.Context, cfg *config.Config) error {
	a, err := newAPI(ctx, cfg)
	if err != nil {
		return err
	}
	defer disconnect(a)

	for _, event := range cfg.Upstream.Events {
		if _, err := a.Session(ctx, event); err != nil {
			log.Printf("failed to load event %s: %v", event, err)
		}
	}

	interval, err := cfg.GetRefreshInterval()
	if err != nil {
		return err
	}

	var b *bot.Bot
	if cfg.Bot.Token != "" {
		if b, err = bot.NewBot(cfg.Bot.Token, a, cfg.Bot.Event); err != nil {
			return err
		}
	} else {
		log.Println("no discord token configured, running without the bot")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return web.Start(ctx, web.Config{
			Addr:           cfg.Server.Addr,
			API:            a,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			WebhookSecret:  cfg.Server.WebhookSecret,
		})
	})
	g.Go(func() error {
		return ignoreCanceled(refreshLoop(ctx, a, interval))
	})

	if b != nil {
		g.Go(func() error {
			return ignoreCanceled(b.Run(ctx))
		})
	}
	return g.Wait()
}

// refreshLoop refreshes every loaded event each interval until ctx is done. A zero interval disables refreshing
func refreshLoop(ctx context.Context, r refresher, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.RefreshAll(ctx); err != nil {
				log.Printf("failed to refresh events: %v", err)
			}
		}
	}
}

// printSnapshot writes the view of a snapshot, filtered when filter is not empty
func printSnapshot(w io.Writer, snapshot *bracket.Snapshot, filter string) error {
	a := api.New(nil, snapshot.Tournament.ID)
	a.LoadSnapshot(snapshot.Name, snapshot)

	ctx := context.Background()
	view, err := a.GetView(ctx, snapshot.Name)
	if err != nil {
		return err
	}
	if filter != "" {
		view, err = a.Dispatch(ctx, snapshot.Name, session.Event{Type: session.FilterChanged, Filter: filter})
		if err != nil {
			return err
		}
	}

	_, err = io.WriteString(w, api.FormatView(view))
	return err
}

// saveSnapshot writes a snapshot to dir as json, named after the event
func saveSnapshot(dir string, snapshot *bracket.Snapshot) (string, error) {
	data, err := bracket.EncodeSnapshot(snapshot)
	if err != nil {
		return "", fmt.Errorf("error encoding event %s: %w", snapshot.Name, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, fileName(snapshot.Name)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("error writing %s: %w", path, err)
	}
	return path, nil
}

// Helper function to turn an event name into a file name, e.g. "Mixed Doubles 4.0" becomes "mixed-doubles-4.0"
func fileName(event string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-':
			return unicode.ToLower(r)
		default:
			return '-'
		}
	}, strings.TrimSpace(event))
	if name == "" {
		return "event"
	}
	return name
}

// Helper function to load the config file, apply flag overrides and the debug setting, then validate
func loadConfig(flags *rootFlags, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}
	if cfg.App.Debug && !flags.debug {
		if err := setupLogging(true); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Helper function to build the api from the config
func newAPI(ctx context.Context, cfg *config.Config) (*api.API, error) {
	client := external.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.RequestsPerSecond, cfg.Upstream.Burst)
	a, err := api.NewAPI(ctx, cfg.Mongo.Database, cfg.Mongo.URI, client, cfg.Upstream.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize API: %w", err)
	}
	return a, nil
}

// Helper function to close the store connection on exit
func disconnect(a *api.API) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Store.GetClient().Disconnect(ctx); err != nil {
		log.Printf("failed to disconnect from mongo: %v", err)
	}
}

// Helper function to treat shutting down on a signal as success
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
