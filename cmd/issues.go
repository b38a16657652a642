package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termlink/issuemirror/pkg/models"
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "List the mirrored issues for a project",
	Long: `List the issues mirrored for a project's linked repository, refreshing the
mirror first if it is stale. With --entity, only issues mentioning the given
term (a prefixed id such as 'GO:0001234', or an IRI) are listed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := projectFlag(cmd)
		if err != nil {
			return err
		}
		entityRef, err := cmd.Flags().GetString("entity")
		if err != nil {
			return err
		}

		application, err := newApp()
		if err != nil {
			return err
		}
		defer application.close()

		ctx := cmd.Context()
		var issues []models.GitHubIssue
		if entityRef != "" {
			issues, err = application.issues.GetIssuesForEntity(ctx, projectID, entityRef)
		} else {
			issues, err = application.issues.GetIssues(ctx, projectID)
		}
		if err != nil {
			return fmt.Errorf("failed to list issues: %w", err)
		}

		for _, issue := range issues {
			fmt.Printf("#%d [%s] %s\n", issue.Number, issue.State, issue.Title)
		}
		fmt.Printf("%d issues\n", len(issues))
		return nil
	},
}

func init() {
	issuesCmd.Flags().StringP("entity", "e", "", "Entity to filter by (prefixed id or IRI)")
}
