package cmd

import (
	"encoding/json"

	"github.com/darksworm/argofleet/pkg/model"
	"github.com/spf13/cobra"
)

// queryFlags binds the shared --name/--selector pair. Validation of the
// "exactly one" invariant happens inside the fleet client, not here, so the
// CLI and library callers fail the same way.
func queryFlags(cmd *cobra.Command, query *model.AppQuery) {
	cmd.Flags().StringVar(&query.Name, "name", "", "Exact application name (probed with configured suffixes)")
	cmd.Flags().StringVar(&query.Selector, "selector", "", "Label selector matching one or more applications")
}

func newFindCommand() *cobra.Command {
	var query model.AppQuery

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find which instances host an application",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFleet()
			if err != nil {
				return printError(err)
			}

			located, err := f.FindApp(cmd.Context(), query)
			if err != nil {
				return printError(err)
			}
			return printJSON(located)
		},
	}

	queryFlags(cmd, &query)
	return cmd
}

func newGetCommand() *cobra.Command {
	var query model.AppQuery

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch matched applications' state, tagged with the originating instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFleet()
			if err != nil {
				return printError(err)
			}

			apps, err := f.AppData(cmd.Context(), query)
			if err != nil {
				return printError(err)
			}

			payloads := make([]json.RawMessage, 0, len(apps))
			for _, app := range apps {
				payloads = append(payloads, app.Payload)
			}
			return printJSON(payloads)
		},
	}

	queryFlags(cmd, &query)
	return cmd
}

func newResyncCommand() *cobra.Command {
	var query model.AppQuery

	cmd := &cobra.Command{
		Use:   "resync",
		Short: "Re-sync matched applications on every instance that hosts them",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFleet()
			if err != nil {
				return printError(err)
			}

			results, err := f.ResyncAll(cmd.Context(), query)
			if err != nil {
				return printError(err)
			}
			return printJSON(results)
		},
	}

	queryFlags(cmd, &query)
	return cmd
}
