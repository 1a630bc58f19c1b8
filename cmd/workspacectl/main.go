// Command workspacectl administers the workspace database: users, projects,
// collaborators and access tokens.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mmuslimabdulj/goat-collab/internal/config"
	"github.com/mmuslimabdulj/goat-collab/internal/store"
)

// app carries the state shared by every subcommand
type app struct {
	dataDir  string
	logLevel string
	store    *store.Store
	owned    bool // store opened by this process and closed after the command
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "workspacectl",
		Short:         "Administer the collaborative workspace database",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `Administer users, projects and collaborators stored by the server.

The server holds an exclusive lock on the data directory, so stop it
before running commands against the same directory.

Examples:
  workspacectl user create alice@example.com
  workspacectl project create demo --owner alice@example.com
  workspacectl project add-member <project-id> bob@example.com --as alice@example.com
  workspacectl token issue alice@example.com`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = config.DefaultConfig().DataDir
	}
	cmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", dataDir, "Badger data directory")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error, silent)")

	cmd.AddCommand(
		userCmd(a),
		projectCmd(a),
		tokenCmd(a),
	)
	return cmd
}

func (a *app) open() error {
	if a.store != nil {
		return nil
	}
	s, err := store.Open(store.Options{Dir: a.dataDir}, a.logger())
	if err != nil {
		return err
	}
	a.store = s
	a.owned = true
	return nil
}

func (a *app) close() error {
	if !a.owned || a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	a.owned = false
	return err
}

func (a *app) logger() *slog.Logger {
	if a.logLevel == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return config.NewLogger(os.Stderr, a.logLevel)
}
