package cli

import (
	"fmt"
	"strings"

	"github.com/sadopc/planboard/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		filter filterFlags
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the actions of a plan to CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}

			e, err := newEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			p, actions, err := filter.apply(e)
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = fmt.Sprintf("planboard-%s-%s.%s", p.ID, e.now().Format("2006-01-02"), format)
			}

			if format == "csv" {
				err = export.ToCSV(actions, path)
			} else {
				err = export.ToJSON(p, actions, path)
			}
			if err != nil {
				return err
			}

			e.logger.Info("exported actions", "plan", p.ID, "count", len(actions), "path", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d actions to %s\n", len(actions), path)
			return nil
		},
	}
	filter.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format: csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default planboard-<plan>-<date>.<format>)")
	return cmd
}
