// Package commands provides CLI commands for chatfront.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diogo/chatfront/internal/config"
	"github.com/diogo/chatfront/internal/tui"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootOptions holds the flags shared by the root command and its children
type rootOptions struct {
	endpoint string
	verbose  bool
	file     string
	output   string
	raw      bool
	copy     bool
	version  bool
}

// NewRootCmd creates the root command. A nil deps uses the production
// implementations.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	deps = deps.withDefaults()
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "chatfront [prompt]",
		Short: "Terminal client for a conversational chat service",
		Long: `chatfront sends messages to a chat service over HTTP and shows the
replies as rendered markdown. Rate-limited and failed requests are retried
automatically before an error is reported.

Examples:
  chatfront chat                        Start interactive chat
  chatfront "What is Go?"               Send a single message
  chatfront -f prompt.md                Read the message from a file
  cat prompt.md | chatfront             Read the message from stdin
  chatfront "Hello" --raw               Print the reply without decoration
  chatfront health                      Check the service is up
  chatfront config set endpoint http://localhost:9000`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.version {
				fmt.Fprintf(deps.Stdout, "chatfront %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, ok, err := readPrompt(deps, opts, args)
			if err != nil {
				return err
			}
			if !ok {
				// No input - show help
				return cmd.Help()
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return runQuery(cmd.Context(), deps, cfg, prompt, opts)
		},
	}

	cmd.SetIn(deps.Stdin)
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.endpoint, "endpoint", "e", "", "Chat service base URL (overrides config)")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Write logs to stderr instead of the log file")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read message from file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save reply to file")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the raw reply without decoration")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the reply to the clipboard")
	cmd.Flags().BoolVarP(&opts.version, "version", "v", false, "Show version and exit")

	// Add subcommands
	cmd.AddCommand(newChatCmd(deps, opts))
	cmd.AddCommand(newHealthCmd(deps, opts))
	cmd.AddCommand(newConfigCmd(deps))

	return cmd
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(nil)

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), tui.FormatError(err))
		stop()
		os.Exit(1)
	}
}

// readPrompt picks the message from --file, the positional argument or
// piped stdin, in that order. ok is false when there is no input at all.
func readPrompt(deps *Dependencies, opts *rootOptions, args []string) (string, bool, error) {
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	if deps.StdinPiped() {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	return "", false, nil
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return cfg, err
	}
	if ep := strings.TrimSpace(opts.endpoint); ep != "" {
		cfg.Endpoint = ep
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
