package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var technologiesCmd = &cobra.Command{
	Use:     "technologies",
	Aliases: []string{"tech"},
	Short:   "List supported technology stacks",
	Long: `List the technology stacks DocuGen can generate. Pass an id to
'docugen generate --tech' to skip inference from the prompt.`,
	Args: cobra.NoArgs,
	RunE: runTechnologies,
}

func init() {
	rootCmd.AddCommand(technologiesCmd)
}

func runTechnologies(cmd *cobra.Command, _ []string) error {
	if err := requireService(generationService != nil, "generation"); err != nil {
		return err
	}

	styles := stylesFor(cmd.OutOrStdout())
	for _, p := range generationService.Technologies() {
		cmd.Printf("  %-14s %s\n", p.ID, styles.Title.Render(p.Name))
		cmd.Printf("  %-14s %s, %s\n", "", p.Language, p.BuildSystem)
		if len(p.Triggers) > 0 {
			cmd.Printf("  %-14s %s\n", "", styles.Muted.Render("keywords: "+strings.Join(p.Triggers, ", ")))
		}
		cmd.Println()
	}
	return nil
}
