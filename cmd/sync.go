package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termlink/issuemirror/internal/logging"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh the local issue mirror for a project",
	Long: `Refresh the local issue mirror for a project's linked repository.

The refresh is a no-op when the mirror is already current; pass --force to
invalidate it first and fetch everything again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := projectFlag(cmd)
		if err != nil {
			return err
		}
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}

		application, err := newApp()
		if err != nil {
			return err
		}
		defer application.close()

		ctx := cmd.Context()
		if force {
			if err := application.manager.Invalidate(ctx, projectID); err != nil {
				return fmt.Errorf("failed to invalidate mirror: %w", err)
			}
		}
		if err := application.manager.EnsureUpToDate(ctx, projectID); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		logging.Info("sync complete", "project_id", projectID)
		return nil
	},
}

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Mark a project's mirror as stale",
	Long: `Mark a project's local issue mirror as stale without refreshing it. The next
sync (or issue listing) performs a full refresh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := projectFlag(cmd)
		if err != nil {
			return err
		}

		application, err := newApp()
		if err != nil {
			return err
		}
		defer application.close()

		if err := application.manager.Invalidate(cmd.Context(), projectID); err != nil {
			return fmt.Errorf("failed to invalidate mirror: %w", err)
		}
		logging.Info("mirror invalidated", "project_id", projectID)
		return nil
	},
}

func init() {
	syncCmd.Flags().Bool("force", false, "Invalidate the mirror before syncing")
}
