package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termlink/issuemirror/internal/logging"
	"github.com/termlink/issuemirror/pkg/models"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link a project to a GitHub repository",
	Long: `Link a project to a GitHub repository so its issues can be mirrored locally.
Linking is idempotent: an already-linked project is left untouched. The
freshly linked mirror starts out stale and is refreshed by the next sync.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, repoCoords, err := projectAndRepo(cmd)
		if err != nil {
			return err
		}

		application, err := newApp()
		if err != nil {
			return err
		}
		defer application.close()

		if err := application.manager.LinkProject(cmd.Context(), projectID, repoCoords); err != nil {
			return fmt.Errorf("failed to link project: %w", err)
		}
		logging.Info("project linked", "project_id", projectID, "repository", repoCoords.FullName())
		return nil
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Remove a project's repository link",
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

		if err := application.manager.UnlinkProject(cmd.Context(), projectID); err != nil {
			return fmt.Errorf("failed to unlink project: %w", err)
		}
		logging.Info("project unlinked", "project_id", projectID)
		return nil
	},
}

func init() {
	linkCmd.Flags().StringP("repository", "r", "", "GitHub repository (e.g., 'owner/repo')")
}

// projectFlag reads and validates the --project flag.
func projectFlag(cmd *cobra.Command) (models.ProjectID, error) {
	project, err := cmd.Flags().GetString("project")
	if err != nil {
		return "", err
	}
	if project == "" {
		return "", fmt.Errorf("--project is required")
	}
	return models.ProjectID(project), nil
}

// projectAndRepo reads the --project and --repository flags.
func projectAndRepo(cmd *cobra.Command) (models.ProjectID, models.RepoCoordinates, error) {
	projectID, err := projectFlag(cmd)
	if err != nil {
		return "", models.RepoCoordinates{}, err
	}
	repository, err := cmd.Flags().GetString("repository")
	if err != nil {
		return "", models.RepoCoordinates{}, err
	}
	repoCoords, err := models.ParseRepoCoordinates(repository)
	if err != nil {
		return "", models.RepoCoordinates{}, err
	}
	return projectID, repoCoords, nil
}
