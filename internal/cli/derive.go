package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"garden-planner/internal/companion"
	"garden-planner/internal/export"
)

func newSummaryCmd(e *env) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "summary <plan>",
		Short: "Show bed area, seedlings, fertilizer and schedule",
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
			summary, ok := a.Planner().Summarize(plan.ID)
			if !ok {
				return fmt.Errorf("%w: %s", errPlanNotFound, args[0])
			}

			out := cmd.OutOrStdout()
			switch {
			case e.jsonOutput:
				return outputJSON(out, summary)
			case list:
				fmt.Fprintln(out, export.ShoppingListText(plan.Title, *summary))
			default:
				fmt.Fprint(out, export.SummaryText(plan.Title, *summary))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "Print the copyable shopping list only")
	return cmd
}

func newCompanionsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "companions <plan> [cell]",
		Short: "Show good and bad neighbours",
		Long: `Show good and bad neighbours. Without a cell, lists the status of every
planted cell. With a cell, lists each related neighbour in reach.`,
		Args: cobra.RangeArgs(1, 2),
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

			if len(args) == 1 {
				statuses, _ := a.Planner().CompanionStatuses(plan.ID)
				if e.jsonOutput {
					return outputJSON(out, statuses)
				}
				var rows [][]string
				for _, c := range plan.OccupiedCells() {
					st := statuses[c.ID]
					label := c.Content
					if v, ok := a.Catalog().Get(c.Content); ok {
						label = v.Label()
					}
					rows = append(rows, []string{c.ID, label, yesNo(st.HasGoodNeighbor), yesNo(st.HasBadNeighbor)})
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "Nothing planted yet.")
					return nil
				}
				printTable(out, []string{"CELL", "VEGETABLE", "GOOD", "BAD"}, rows)
				return nil
			}

			cellID, err := cellArg(args[1])
			if err != nil {
				return err
			}
			neighbors, _ := a.Planner().CompanionNeighbors(plan.ID, cellID)
			if e.jsonOutput {
				if neighbors == nil {
					neighbors = []companion.Neighbor{}
				}
				return outputJSON(out, neighbors)
			}
			if len(neighbors) == 0 {
				fmt.Fprintf(out, "No related neighbours within reach of %s.\n", cellID)
				return nil
			}
			for _, n := range neighbors {
				name := n.VegetableID
				if v, ok := a.Catalog().Get(n.VegetableID); ok {
					name = v.Label()
				}
				clr := goodColor
				if n.Relation == companion.Bad {
					clr = badColor
				}
				_, _ = clr.Fprintf(out, "%-4s %-6s %s at %s (%s cm, reach %s cm)\n",
					marker(n.Relation), n.Relation, name, n.CellID,
					strconv.FormatFloat(n.DistanceCm, 'f', 1, 64),
					strconv.FormatFloat(n.ThresholdCm, 'f', 1, 64))
			}
			return nil
		},
	}
}

func marker(r companion.Relation) string {
	if r == companion.Bad {
		return export.Marker(companion.Status{HasBadNeighbor: true})
	}
	return export.Marker(companion.Status{HasGoodNeighbor: true})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
