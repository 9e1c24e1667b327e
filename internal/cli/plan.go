package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"garden-planner/internal/export"
	"garden-planner/internal/garden"
	"garden-planner/internal/planner"
)

func newPlanCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Create, list and manage plans",
	}
	cmd.AddCommand(
		newPlanNewCmd(e),
		newPlanListCmd(e),
		newPlanShowCmd(e),
		newPlanRenameCmd(e),
		newPlanCellSizeCmd(e),
		newPlanRmCmd(e),
		newPlanDupCmd(e),
	)
	return cmd
}

func newPlanNewCmd(e *env) *cobra.Command {
	var width, height, cellSize int
	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create an empty plan",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			plan, err := a.Planner().AddPlan(cmd.Context(), strings.Join(args, " "), width, height, cellSize)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if e.jsonOutput {
				return outputJSON(out, plan)
			}
			printSuccess(out, "Created plan %q (%s), %dx%d cells of %d cm", plan.Title, plan.ID, plan.Width, plan.Height, plan.GridCellSizeCm)
			return nil
		},
	}
	cmd.Flags().IntVarP(&width, "width", "W", planner.DefaultWidth, "Grid width in cells")
	cmd.Flags().IntVarP(&height, "height", "H", planner.DefaultHeight, "Grid height in cells")
	cmd.Flags().IntVarP(&cellSize, "cell-size", "c", garden.DefaultCellSizeCm, "Cell edge in cm")
	return cmd
}

func newPlanListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List plans, most recently edited first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			plans := a.Planner().ListPlans()
			out := cmd.OutOrStdout()
			if e.jsonOutput {
				return outputJSON(out, plans)
			}
			if len(plans) == 0 {
				fmt.Fprintln(out, "No plans yet. Create one with `garden-planner plan new <title>`.")
				return nil
			}
			rows := make([][]string, 0, len(plans))
			for _, p := range plans {
				rows = append(rows, []string{
					shortID(p.ID),
					p.Title,
					fmt.Sprintf("%dx%d", p.Width, p.Height),
					strconv.Itoa(p.GridCellSizeCm),
					strconv.Itoa(p.Planted),
					p.UpdatedAt.Local().Format(time.DateTime),
				})
			}
			printTable(out, []string{"ID", "TITLE", "SIZE", "CELL CM", "PLANTED", "UPDATED"}, rows)
			return nil
		},
	}
}

func newPlanShowCmd(e *env) *cobra.Command {
	var icons bool
	cmd := &cobra.Command{
		Use:   "show <plan>",
		Short: "Draw a plan's grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			plan, err := findPlan(a.Planner(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if e.jsonOutput {
				return outputJSON(out, plan)
			}
			printPlanHeader(out, plan)
			printGrid(out, a.Planner(), plan, icons)
			return nil
		},
	}
	cmd.Flags().BoolVar(&icons, "icons", false, "Draw vegetable icons instead of abbreviations")
	return cmd
}

func printPlanHeader(w io.Writer, plan *garden.Plan) {
	printSection(w, plan.Title)
	printLabelValue(w, "ID", plan.ID)
	printLabelValue(w, "Size", fmt.Sprintf("%dx%d cells, %d cm each", plan.Width, plan.Height, plan.GridCellSizeCm))
	printLabelValue(w, "Updated", plan.UpdatedAt.Local().Format(time.DateTime))
	fmt.Fprintln(w)
}

func newPlanRenameCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <plan> <title>",
		Short: "Rename a plan",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args[1:], " ")
			return updatePlan(cmd, e, args[0], planner.PlanUpdate{Title: &title})
		},
	}
}

func newPlanCellSizeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "cellsize <plan> <cm>",
		Short: "Change the physical size of one cell",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := intArg("cell size", args[1])
			if err != nil {
				return err
			}
			return updatePlan(cmd, e, args[0], planner.PlanUpdate{GridCellSizeCm: &cm})
		},
	}
}

func updatePlan(cmd *cobra.Command, e *env, ref string, u planner.PlanUpdate) error {
	a, err := e.open(cmd.Context())
	if err != nil {
		return err
	}
	plan, err := findPlan(a.Planner(), ref)
	if err != nil {
		return err
	}
	updated, err := a.Planner().UpdatePlan(cmd.Context(), plan.ID, u)
	if err != nil {
		return err
	}
	if updated == nil {
		return fmt.Errorf("%w: %s", errPlanNotFound, ref)
	}
	out := cmd.OutOrStdout()
	if e.jsonOutput {
		return outputJSON(out, updated)
	}
	printSuccess(out, "Updated %q: %d cm cells", updated.Title, updated.GridCellSizeCm)
	return nil
}

func newPlanRmCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <plan>",
		Aliases: []string{"delete"},
		Short:   "Delete a plan",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			plan, err := findPlan(a.Planner(), args[0])
			if err != nil {
				return err
			}
			deleted, err := a.Planner().DeletePlan(cmd.Context(), plan.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if e.jsonOutput {
				return outputJSON(out, map[string]any{"id": plan.ID, "deleted": deleted})
			}
			printSuccess(out, "Deleted plan %q", plan.Title)
			return nil
		},
	}
}

func newPlanDupCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "dup <plan>",
		Short: "Duplicate a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			plan, err := findPlan(a.Planner(), args[0])
			if err != nil {
				return err
			}
			dup, err := a.Planner().DuplicatePlan(cmd.Context(), plan.ID)
			if err != nil {
				return err
			}
			if dup == nil {
				return fmt.Errorf("%w: %s", errPlanNotFound, args[0])
			}
			out := cmd.OutOrStdout()
			if e.jsonOutput {
				return outputJSON(out, dup)
			}
			printSuccess(out, "Created %q (%s)", dup.Title, dup.ID)
			return nil
		},
	}
}

// printGrid draws plan with its legend.
func printGrid(w io.Writer, p *planner.Planner, plan *garden.Plan, icons bool) {
	statuses, _ := p.CompanionStatuses(plan.ID)
	fmt.Fprint(w, export.GridText(plan, p.Catalog(), statuses, export.GridOptions{Icons: icons}))
	fmt.Fprintln(w)
	if summary, ok := p.Summarize(plan.ID); ok {
		_, _ = dimColor.Fprint(w, export.Legend(*summary))
	}
}

// shortID trims uuids for tables; plans can be addressed by prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
