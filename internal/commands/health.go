package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// healthTimeout bounds the health check
const healthTimeout = 10 * time.Second

func newHealthCmd(deps *Dependencies, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the chat service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			var logOut io.Writer = deps.Stderr
			if !opts.verbose {
				var closeLog func()
				logOut, closeLog = openLogFile()
				defer closeLog()
			}
			logger := setupLogging(cfg.LogLevel, logOut)

			client, err := deps.NewClient(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
			defer cancel()

			start := time.Now()
			health, err := client.Health(ctx)
			if err != nil {
				return err
			}
			elapsed := time.Since(start).Round(time.Millisecond)

			fmt.Fprintf(deps.Stdout, "%s %s (%s, %s)\n",
				outStyle.success.Bold(true).Render("✓"),
				client.Endpoint(),
				health.Status,
				elapsed,
			)
			return nil
		},
	}
}
