package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check optional external tools",
	Long: `Checks which optional external tools are installed. Every feature
degrades gracefully without its tool, usually by falling back to a
cloud API.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	if toolDoctor == nil {
		return errors.New("doctor not configured")
	}

	cmd.Println("Optional tools:")
	cmd.Println()
	for _, result := range toolDoctor.Check() {
		if result.Found {
			cmd.Printf("  [ok]      %-12s %s\n", result.Tool.Name, result.Path)
			continue
		}
		cmd.Printf("  [missing] %-12s %s\n", result.Tool.Name, result.Tool.Feature)
		cmd.Printf("            fallback: %s\n", result.Tool.Fallback)
		cmd.Printf("            install:  %s\n", result.Tool.Install)
	}
	return nil
}
