package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "issuemirror",
	Short: "issuemirror keeps a local mirror of GitHub issues for linked projects",
	Long: `issuemirror maintains a local, queryable copy of the GitHub issues belonging
to repositories linked to your projects. It authenticates as a GitHub App
installation, performs full refreshes when a mirror goes stale, and records
which ontology terms each issue mentions.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add persistent flags that will be available to all commands
	rootCmd.PersistentFlags().StringP("project", "p", "", "Project identifier")

	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
	rootCmd.AddCommand(invalidateCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(issuesCmd)
}
