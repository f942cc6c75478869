package commands

import (
	"github.com/spf13/cobra"
)

func newChatCmd(deps *Dependencies, g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the Ads Assistant.

The conversation lives only in memory and is gone when you exit; use
/export to save a transcript. Esc cancels a pending reply. Type /exit,
/quit, or press Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: withApp(deps, g, func(cmd *cobra.Command, a *app, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			a.logger.Info().Str("backend", client.BaseURL()).Msg("chat session started")
			return deps.TUI.RunChat(cmd.Context(), client, a.cfg, a.logger)
		}),
	}
}
