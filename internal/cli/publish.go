package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPublishCmd(e *env) *cobra.Command {
	var live bool
	cmd := &cobra.Command{
		Use:   "publish <plan>",
		Short: "Post a plan to the Ghost blog",
		Long: `Post the plan's grid, seedlings, fertilizer and schedule to the Ghost blog
set by GHOST_URL and GHOST_ADMIN_API_KEY. Posts are drafts unless --live
is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			plan, err := findPlan(a.Planner(), args[0])
			if err != nil {
				return err
			}
			post, err := a.PublishPlan(cmd.Context(), plan.ID, live)
			if err != nil {
				return err
			}
			if post == nil {
				return fmt.Errorf("%w: %s", errPlanNotFound, args[0])
			}

			out := cmd.OutOrStdout()
			if e.jsonOutput {
				return outputJSON(out, post)
			}
			printSuccess(out, "Posted %q as %s", plan.Title, post.Status)
			if post.URL != "" {
				printLabelValue(out, "URL", post.URL)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&live, "live", false, "Publish immediately instead of saving a draft")
	return cmd
}
