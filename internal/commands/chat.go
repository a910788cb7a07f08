package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/chatfront/internal/dispatch"
	"github.com/diogo/chatfront/internal/render"
	"github.com/diogo/chatfront/internal/tui"
)

func newChatCmd(deps *Dependencies, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session.

Enter sends the message, Alt+Enter inserts a newline. Ctrl+T toggles voice
input when a voice command is configured, Ctrl+Y copies the last reply.
Type 'exit', 'quit', or press Esc to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			// The TUI owns the terminal, so logs go to the file
			logOut, closeLog := openLogFile()
			defer closeLog()
			logger := setupLogging(cfg.LogLevel, logOut)

			client, err := deps.NewClient(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			if cfg.TUITheme != "" && render.SetTUITheme(cfg.TUITheme) {
				tui.UpdateTheme()
			}

			return deps.TUI.RunChat(cmd.Context(), client, tui.ChatOptions{
				Endpoint:     cfg.Endpoint,
				Dispatch:     dispatch.ConfigFrom(cfg),
				Render:       render.OptionsFromConfig(cfg),
				VoiceCommand: cfg.VoiceCommand,
				AutoCopy:     cfg.CopyToClipboard,
				Logger:       logger,
			})
		},
	}
}
