package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newCatalogCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse and extend the vegetable catalog",
	}
	cmd.AddCommand(newCatalogListCmd(e), newCatalogShowCmd(e), newCatalogClipCmd(e))
	return cmd
}

func newCatalogListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List vegetables",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			vegetables := a.Catalog().All()
			out := cmd.OutOrStdout()
			if e.jsonOutput {
				return outputJSON(out, vegetables)
			}
			rows := make([][]string, 0, len(vegetables))
			for _, v := range vegetables {
				rows = append(rows, []string{v.ID, v.Label(), strconv.FormatFloat(v.SizeCm, 'f', -1, 64), v.PlantingPeriod})
			}
			printTable(out, []string{"ID", "NAME", "SIZE CM", "PLANTING"}, rows)
			return nil
		},
	}
}

func newCatalogShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <vegetable>",
		Short: "Show a vegetable's details and companions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			v, err := findVegetable(a.Catalog(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if e.jsonOutput {
				return outputJSON(out, v)
			}
			printSection(out, v.Label())
			printLabelValue(out, "ID", v.ID)
			printLabelValue(out, "Size", strconv.FormatFloat(v.SizeCm, 'f', -1, 64)+" cm")
			printLabelValue(out, "Planting", orNone(v.PlantingPeriod))
			printLabelValue(out, "Harvest", orNone(v.HarvestPeriod))
			printLabelValue(out, "Good companions", orNone(strings.Join(v.GoodCompanions, ", ")))
			printLabelValue(out, "Bad companions", orNone(strings.Join(v.BadCompanions, ", ")))
			if v.Description != "" {
				fmt.Fprintf(out, "\n%s\n", v.Description)
			}
			if v.Tips != "" {
				_, _ = dimColor.Fprintf(out, "Tip: %s\n", v.Tips)
			}
			return nil
		},
	}
}

func newCatalogClipCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "clip <url>",
		Short: "Add a vegetable from a web page using an LLM",
		Long: `Fetch a page describing a vegetable, extract its catalog entry with the
configured LLM provider and add it to the user catalog file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			v, err := a.ClipVegetable(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if e.jsonOutput {
				return outputJSON(out, v)
			}
			printSuccess(out, "Added %s (%s) to %s", v.Label(), v.ID, a.Config().CatalogPath)
			return nil
		},
	}
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
