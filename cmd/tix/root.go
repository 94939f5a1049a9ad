package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lfrick/tix/internal/config"
	"github.com/lfrick/tix/internal/git"
	"github.com/lfrick/tix/internal/log"
	"github.com/lfrick/tix/internal/output"
)

var (
	// Global flags
	verbose bool
	quiet   bool

	// Shared state injected into commands
	cfg     *config.Config
	workDir string
)

// Command group IDs for organizing help output
const (
	GroupCore    = "core"
	GroupQuery   = "query"
	GroupUtility = "utility"
	GroupConfig  = "config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tix",
	Short: "Ticket-branch association manager",
	Long: `tix maps ticket identifiers (ENG-123, PROJ-4567) to git branches
across repositories.

Record which branch belongs to which ticket, jump straight to a
ticket's branch with a single checkout, and let tix scan branch names
to detect associations automatically.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2, // Enable typo suggestions
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip git check for completion and help commands
		if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
			return nil
		}

		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}

		// Flags are parsed by now; only here can the logger honor
		// --verbose and --quiet.
		cmd.SetContext(commandContext(cmd.Context(), os.Stderr, os.Stdout))

		// Check git is available
		return git.CheckGit()
	},
	// Run is not set - shows help when no subcommand provided
}

// commandContext attaches the logger (stderr, honoring --verbose and
// --quiet) and the printer (stdout, primary data) to the context.
func commandContext(ctx context.Context, errOut, out io.Writer) context.Context {
	ctx = log.WithLogger(ctx, log.New(errOut, verbose, quiet))
	return output.WithPrinter(ctx, out)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Load config
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg = &loadedCfg

	// Get working directory
	workDir, err = os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tix: failed to get working directory: %v\n", err)
		os.Exit(1)
	}

	// Create context with signal handling. The logger and printer are
	// attached in PersistentPreRunE, after flag parsing.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Run 'tix -h' for help")
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Version flag
	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Add command groups for organized help output
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core Commands:"},
		&cobra.Group{ID: GroupQuery, Title: "Query Commands:"},
		&cobra.Group{ID: GroupUtility, Title: "Utility Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// Core commands
	rootCmd.AddCommand(newAssociateCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newCheckoutCmd())
	rootCmd.AddCommand(newScanCmd())

	// Query commands
	rootCmd.AddCommand(newBranchCmd())
	rootCmd.AddCommand(newSuggestCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newReposCmd())

	// Config commands
	rootCmd.AddCommand(newConfigCmd())
}
