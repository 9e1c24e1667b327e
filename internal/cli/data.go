package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"garden-planner/internal/export"
	"garden-planner/internal/metrics"
)

// Export formats accepted by `export`.
const (
	formatText     = "text"
	formatList     = "list"
	formatMarkdown = "markdown"
	formatHTML     = "html"
	formatJSON     = "json"
)

func newExportCmd(e *env) *cobra.Command {
	var format, outPath string
	var all bool
	cmd := &cobra.Command{
		Use:   "export [plan]",
		Short: "Export a plan, or every plan with --all",
		Long: `Export a plan as text, the shopping list, Markdown, a standalone HTML page
or JSON. With --all, every plan is written to a plans file that
` + "`import`" + ` reads back.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if all {
				if outPath == "" {
					return fmt.Errorf("--all requires --out")
				}
				n, err := a.ExportPlans(cmd.Context(), outPath)
				if err != nil {
					return err
				}
				if e.jsonOutput {
					return outputJSON(out, map[string]any{"exported": n, "path": outPath})
				}
				printSuccess(out, "Exported %d plans to %s", n, outPath)
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("export needs a plan or --all")
			}

			plan, err := findPlan(a.Planner(), args[0])
			if err != nil {
				return err
			}
			statuses, _ := a.Planner().CompanionStatuses(plan.ID)
			summary, ok := a.Planner().Summarize(plan.ID)
			if !ok {
				return fmt.Errorf("%w: %s", errPlanNotFound, args[0])
			}

			var data []byte
			switch strings.ToLower(format) {
			case formatText:
				data = []byte(export.GridText(plan, a.Catalog(), statuses, export.GridOptions{}) + "\n" +
					export.Legend(*summary) + "\n" + export.SummaryText(plan.Title, *summary))
			case formatList:
				data = []byte(export.ShoppingListText(plan.Title, *summary) + "\n")
			case formatMarkdown, "md":
				data = []byte(export.PlanMarkdown(plan, a.Catalog(), statuses) + "\n" + export.SummaryMarkdown(plan.Title, *summary))
			case formatHTML:
				data, err = export.PlanHTML(plan, a.Catalog(), statuses, *summary, a.Config().Locale)
			case formatJSON:
				data, err = export.PlanJSON(plan, statuses, *summary)
			default:
				return fmt.Errorf("unknown format %q: use text, list, markdown, html or json", format)
			}
			if err != nil {
				return err
			}

			if outPath == "" {
				_, err = out.Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			printSuccess(out, "Wrote %s", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "text, list, markdown, html or json")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&all, "all", false, "Export every plan as a plans file")
	return cmd
}

func newImportCmd(e *env) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import plans from a plans file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.ImportPlans(cmd.Context(), args[0], replace)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if e.jsonOutput {
				return outputJSON(out, res)
			}
			printSuccess(out, "Imported %d of %d plans (%d already present, %d invalid)", res.Imported, res.Found, res.Existing, res.Skipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "Overwrite plans with the same id")
	return cmd
}

func newMigratePlansCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-plans",
		Short: "Copy plans from the JSON plans file into SQLite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.MigratePlansFromFile(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if e.jsonOutput {
				return outputJSON(out, res)
			}
			fmt.Fprintf(out, "Found %d plans in %s. %d already in the database.\n", res.Found, a.Config().PlansFile, res.Existing)
			if res.Skipped > 0 {
				printWarning(out, "Skipped %d invalid plans", res.Skipped)
			}
			printSuccess(out, "Migration complete. Migrated %d plans to the database.", res.Imported)
			return nil
		},
	}
}

func newMetricsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Inspect and prune usage metrics",
	}
	cmd.AddCommand(newMetricsUsageCmd(e), newMetricsCleanupCmd(e))
	return cmd
}

type usageReport struct {
	Operations []metrics.OperationCount `json:"operations"`
	LLM        []metrics.DailyUsage     `json:"llm"`
	System     metrics.SysHealth        `json:"system"`
}

func newMetricsUsageCmd(e *env) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show operation counts and LLM token usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			ops, err := a.Metrics().GetOperationCounts(cmd.Context(), days)
			if err != nil {
				return err
			}
			usage, err := a.Metrics().GetDailyUsage(cmd.Context(), days)
			if err != nil {
				return err
			}
			report := usageReport{Operations: ops, LLM: usage, System: a.SysHealth()}

			out := cmd.OutOrStdout()
			if e.jsonOutput {
				return outputJSON(out, report)
			}

			printSection(out, fmt.Sprintf("Operations (last %d days)", days))
			rows := make([][]string, 0, len(ops))
			for _, o := range ops {
				rows = append(rows, []string{o.Operation, strconv.Itoa(o.Total), strconv.Itoa(o.Applied), fmt.Sprintf("%.0f", o.AvgLatencyUS)})
			}
			printTable(out, []string{"OPERATION", "TOTAL", "APPLIED", "AVG µS"}, rows)

			fmt.Fprintln(out)
			printSection(out, "LLM usage")
			rows = rows[:0]
			for _, u := range usage {
				rows = append(rows, []string{u.Date, strconv.Itoa(u.TotalExecution), strconv.Itoa(u.TotalPrompt), strconv.Itoa(u.TotalCompletion)})
			}
			printTable(out, []string{"DAY", "CALLS", "PROMPT", "COMPLETION"}, rows)

			fmt.Fprintln(out)
			printSection(out, "System")
			printLabelValue(out, "Data directory", report.System.DataDiskSize)
			printLabelValue(out, "Database", report.System.Storage.Database)
			printLabelValue(out, "Plans file", report.System.Storage.PlansFile)
			printLabelValue(out, "Catalog", report.System.Storage.Catalog)
			printLabelValue(out, "Plans", fmt.Sprintf("%d (%d planted cells)", report.System.Garden.Plans, report.System.Garden.PlantedCells))
			printLabelValue(out, "Heap", fmt.Sprintf("%d MB", report.System.AllocMB))
			printLabelValue(out, "Goroutines", strconv.Itoa(report.System.Goroutines))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "Report the last N days")
	return cmd
}

func newMetricsCleanupCmd(e *env) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove old metric records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			affected, err := a.Metrics().Cleanup(cmd.Context(), days)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if e.jsonOutput {
				return outputJSON(out, map[string]int64{"removed": affected})
			}
			printSuccess(out, "Removed %d old metric records.", affected)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Keep records for the last N days")
	return cmd
}
