package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"garden-planner/internal/config"
	"garden-planner/internal/httpapi"
)

func newTokenCmd(e *env) *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return issueToken(cmd, e, cfg, subject, ttl)
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "cli", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "Token lifetime")
	return cmd
}

func issueToken(cmd *cobra.Command, e *env, cfg *config.Config, subject string, ttl time.Duration) error {
	if err := cfg.RequireAPI(); err != nil {
		return err
	}
	now := time.Now()
	token, err := httpapi.IssueToken([]byte(cfg.APIJWTSecret), subject, ttl, now)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if e.jsonOutput {
		return outputJSON(out, map[string]any{"token": token, "expiresAt": now.Add(ttl).UTC()})
	}
	fmt.Fprintln(out, token)
	return nil
}
