/* main.go
 * The "main" method for running the bracket service. Run with --help for the available commands
 * Usage: pickleball-brackets serve --config config.toml
 *        pickleball-brackets bot --event "Mixed Doubles 4.0"
 *        pickleball-brackets fetch --out events "Mixed Doubles 4.0"
 *        pickleball-brackets show events/mixed-doubles-4.0.json --filter smith --watch
 * Authors: Zachary Bower
 */

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootFlags holds the flags shared by every command
type rootFlags struct {
	configPath string
	debug      bool
}

// newRootCmd creates the root command and its sub commands
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "pickleball-brackets",
		Short: "Browse and filter pickleball tournament brackets",
		Long: `Serves tournament brackets from pickleballtournaments.com over HTTP, websockets and Discord.
Brackets can be filtered by player, matches selected and round robin standings computed.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(flags.debug)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "config.toml", "Path to the config file")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newBotCmd(flags))
	cmd.AddCommand(newFetchCmd(flags))
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newConfigCmd(flags))
	return cmd
}

// setupLogging configures the standard logger. Debug can also be enabled with the DEBUG environment variable
func setupLogging(debug bool) error {
	if env := os.Getenv("DEBUG"); env != "" && !debug {
		var err error
		debug, err = convertStrToBool(env)
		if err != nil {
			return fmt.Errorf("invalid DEBUG value %q: %w", env, err)
		}
	}

	if debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
	return nil
}
