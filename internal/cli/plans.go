package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/sadopc/planboard/internal/plan"
	"github.com/spf13/cobra"
)

func newPlansCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List action plans",
		Long:  `List every plan in the registry with its action counts by delay status.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCODE\tNAME\tACTIONS\tLATE\tON TIME\tDONE")

			for _, p := range e.registry.Plans() {
				_, actions, err := e.processed(p.ID)
				if err != nil {
					return err
				}
				counts := countDelays(actions)
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
					p.ID,
					p.Code,
					p.Name,
					len(actions),
					counts[plan.DelayLate],
					counts[plan.DelayOnTime],
					counts[plan.DelayDone],
				)
			}
			return w.Flush()
		},
	}
}

func countDelays(actions []plan.ProcessedAction) map[plan.DelayStatus]int {
	counts := make(map[plan.DelayStatus]int, len(plan.DelayOrder))
	for _, a := range actions {
		counts[a.DelayStatus]++
	}
	return counts
}
