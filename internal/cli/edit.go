package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"garden-planner/internal/app"
	"garden-planner/internal/garden"
	"garden-planner/internal/tui"
)

// editFunc applies one editor operation to the plan with the given id.
type editFunc func(ctx context.Context, a *app.App, planID string) (*garden.Plan, error)

// runEdit resolves the plan, applies fn and reports whether anything
// changed. Operations that change nothing are not errors.
func runEdit(cmd *cobra.Command, e *env, ref, done string, fn editFunc) error {
	a, err := e.open(cmd.Context())
	if err != nil {
		return err
	}
	before, err := findPlan(a.Planner(), ref)
	if err != nil {
		return err
	}
	after, err := fn(cmd.Context(), a, before.ID)
	if err != nil {
		return err
	}
	if after == nil {
		return fmt.Errorf("%w: %s", errPlanNotFound, ref)
	}

	out := cmd.OutOrStdout()
	if e.jsonOutput {
		return outputJSON(out, after)
	}
	if changed(before, after) {
		printSuccess(out, "%s", done)
	} else {
		printWarning(out, "Nothing changed")
	}
	fmt.Fprintln(out)
	printGrid(out, a.Planner(), after, false)
	return nil
}

func newPlaceCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "place <plan> <cell> <vegetable>",
		Short: "Plant a vegetable in a cell",
		Long: `Plant a vegetable in a cell, replacing what grows there.

Cells are addressed as x,y or x-y counting from 0 at the top left.`,
		Example: "  garden-planner place backyard 2,3 tomato",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cellID, err := cellArg(args[1])
			if err != nil {
				return err
			}
			return runEdit(cmd, e, args[0], "Planted "+args[2]+" at "+cellID,
				func(ctx context.Context, a *app.App, planID string) (*garden.Plan, error) {
					v, err := findVegetable(a.Catalog(), args[2])
					if err != nil {
						return nil, err
					}
					return a.Planner().Place(ctx, planID, cellID, v.ID)
				})
		},
	}
}

func newRemoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <plan> <cell>",
		Aliases: []string{"clear"},
		Short:   "Clear a cell",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cellID, err := cellArg(args[1])
			if err != nil {
				return err
			}
			return runEdit(cmd, e, args[0], "Cleared "+cellID,
				func(ctx context.Context, a *app.App, planID string) (*garden.Plan, error) {
					return a.Planner().Remove(ctx, planID, cellID)
				})
		},
	}
}

func newMoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "move <plan> <from> <to>",
		Short: "Move a vegetable, swapping with the target cell",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := cellArg(args[1])
			if err != nil {
				return err
			}
			to, err := cellArg(args[2])
			if err != nil {
				return err
			}
			return runEdit(cmd, e, args[0], "Moved "+from+" to "+to,
				func(ctx context.Context, a *app.App, planID string) (*garden.Plan, error) {
					return a.Planner().Move(ctx, planID, from, to)
				})
		},
	}
}

func newToggleCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <plan> <cell>",
		Short: "Switch a cell between bed and pathway",
		Long:  "Switch a cell between bed and pathway. Turning a bed into a pathway clears it.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cellID, err := cellArg(args[1])
			if err != nil {
				return err
			}
			return runEdit(cmd, e, args[0], "Toggled "+cellID,
				func(ctx context.Context, a *app.App, planID string) (*garden.Plan, error) {
					return a.Planner().ToggleCellType(ctx, planID, cellID)
				})
		},
	}
}

func newResizeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "resize <plan> <width> <height>",
		Short: "Change the grid dimensions",
		Long:  "Change the grid dimensions. Cells outside the new bounds are dropped with their contents.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := intArg("width", args[1])
			if err != nil {
				return err
			}
			h, err := intArg("height", args[2])
			if err != nil {
				return err
			}
			return runEdit(cmd, e, args[0], fmt.Sprintf("Resized to %dx%d", w, h),
				func(ctx context.Context, a *app.App, planID string) (*garden.Plan, error) {
					return a.Planner().Resize(ctx, planID, w, h)
				})
		},
	}
}

func newEditCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <plan>",
		Short: "Open the interactive grid editor",
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
			return tui.Run(cmd.Context(), a.Planner(), plan.ID)
		},
	}
}
