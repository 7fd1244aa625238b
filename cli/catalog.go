package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TFMV/tenlab/tools"
)

func (a *app) toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the ten tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			ids := tools.All()
			if a.jsonOut {
				infos := make([]tools.Info, len(ids))
				for i, id := range ids {
					infos[i] = id.Info()
				}
				return json.NewEncoder(w).Encode(infos)
			}
			for _, id := range ids {
				info := id.Info()
				fmt.Fprintf(w, "%s %-12s %s\n", titleStyle.Render(info.Number), info.Slug, labelStyle.Render(info.Title+": "+info.Subtitle))
			}
			return nil
		},
	}
}

func (a *app) presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [tool]",
		Short: "List scenario presets",
		Long: `List the scenario presets of one tool, or of every tool.
The numbers shown are accepted by the --preset flag of each command.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := tools.All()
			if len(args) == 1 {
				id, err := tools.Parse(args[0])
				if err != nil {
					return err
				}
				ids = []tools.ID{id}
			}

			w := cmd.OutOrStdout()
			if a.jsonOut {
				out := make(map[string][]string, len(ids))
				for _, id := range ids {
					out[id.String()] = a.presets.Names(id)
				}
				return json.NewEncoder(w).Encode(out)
			}
			for _, id := range ids {
				fmt.Fprintln(w, titleStyle.Render(id.Info().Title))
				for i, name := range a.presets.Names(id) {
					fmt.Fprintf(w, "  %d. %s\n", i+1, name)
				}
			}
			return nil
		},
	}
}
