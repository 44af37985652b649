package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/sadopc/planboard/internal/plan"
	"github.com/spf13/cobra"
)

// filterFlags select the visible actions, as the dashboard's search and
// status buttons do.
type filterFlags struct {
	planID string
	status string
	query  string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.planID, "plan", "p", "", "plan id (default: first plan)")
	cmd.Flags().StringVarP(&f.status, "status", "s", string(plan.FilterAll), "status filter: all, late, ontime or done")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "text to search in action, responsible, sector or id")
}

func (f *filterFlags) apply(e *env) (plan.Plan, []plan.ProcessedAction, error) {
	status, err := plan.ParseStatusFilter(f.status)
	if err != nil {
		return plan.Plan{}, nil, err
	}
	p, actions, err := e.processed(f.planID)
	if err != nil {
		return plan.Plan{}, nil, err
	}
	return p, plan.Filter(actions, status, f.query), nil
}

func newActionsCmd(opts *options) *cobra.Command {
	var filter filterFlags

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List the actions of a plan",
		Long:  `List the actions of a plan with their delay status and sub-task progress.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.Close()

			p, actions, err := filter.apply(e)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(actions) == 0 {
				fmt.Fprintf(out, "No actions in %s match.\n", p.ID)
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSITUATION\tEND\tRESPONSIBLE\tSECTOR\tTASKS\tACTION")
			for _, a := range actions {
				key := plan.ActionKey(p.ID, a.ID)
				progress := "-"
				if _, err := e.tasks.Load(cmd.Context(), key); err != nil {
					e.logger.Warn("load tasks", "action", key, "err", err)
				} else if pr := e.tasks.Progress(key); pr.Total > 0 {
					progress = fmt.Sprintf("%d/%d", pr.Completed, pr.Total)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					a.ID,
					a.DelayStatus,
					a.EndDate,
					a.Responsible,
					a.Sector,
					progress,
					a.Description,
				)
			}
			return w.Flush()
		},
	}
	filter.register(cmd)
	return cmd
}
