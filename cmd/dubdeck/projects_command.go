package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dubdeck/internal/language"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects on the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			projects, err := client.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects found")
				return nil
			}

			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{
					p.ID,
					p.Title,
					language.DisplayName(p.SourceLanguage),
					languageList(p.TargetLanguages),
					p.Status,
					fmt.Sprintf("%d%%", p.Progress),
				})
			}
			out := renderTable(
				[]string{"ID", "Title", "Source", "Targets", "Status", "Progress"},
				rows,
				6,
			)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func languageList(codes []string) string {
	labels := make([]string, 0, len(codes))
	for _, code := range codes {
		labels = append(labels, language.DisplayName(code))
	}
	return strings.Join(labels, ", ")
}
