// Package cli implements chatbotctl, the operator CLI. It works on the database
// file directly, so it can bootstrap the first admin before the server has any.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sakif/faq-chatbot/internal/config"
	sqliteRepo "github.com/sakif/faq-chatbot/internal/repository/sqlite"
)

// options are the global flags shared by every subcommand.
type options struct {
	dbPath  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "chatbotctl",
		Short: "Manage the FAQ chatbot's admins and questions",
		Long: `chatbotctl manages the FAQ chatbot database without going through the HTTP API.

Use it to create the first admin, load a seed file, or ask the bot a question from a shell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultDB := os.Getenv("DB_PATH")
	if defaultDB == "" {
		defaultDB = config.DefaultDBPath
	}
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", defaultDB, "Path to the SQLite database (env DB_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	rootCmd.AddCommand(newAdminCmd(opts))
	rootCmd.AddCommand(newQuestionsCmd(opts))
	rootCmd.AddCommand(newSeedCmd(opts))
	rootCmd.AddCommand(newAskCmd(opts))

	return rootCmd
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd := newRootCmd()
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	if !o.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// openDB opens (and migrates) the database, creating its directory if needed.
func (o *options) openDB() (*sqliteRepo.DB, error) {
	if o.dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(o.dbPath), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	return sqliteRepo.New(o.dbPath)
}
