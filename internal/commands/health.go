package commands

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newHealthCmd(deps *Dependencies, g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the assistant backend is reachable",
		Args:  cobra.NoArgs,
		RunE: withApp(deps, g, func(cmd *cobra.Command, a *app, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			start := time.Now()
			status, err := client.Health(cmd.Context())
			if err != nil {
				fmt.Fprintln(deps.Stderr, formatErrorMessage(err, a.cfg.Verbose))
				return reported(err)
			}
			if !status.OK() {
				reportedStatus := ""
				if status != nil {
					reportedStatus = status.Status
				}
				return fmt.Errorf("backend at %s reported status %q", client.BaseURL(), reportedStatus)
			}

			okStyle := lipgloss.NewStyle().Foreground(colorSuccess)
			fmt.Fprintln(deps.Stdout, okStyle.Render(fmt.Sprintf("✓ %s is healthy (%s)",
				client.BaseURL(), time.Since(start).Round(time.Millisecond))))
			return nil
		}),
	}
}
