package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/inputecho/internal/script"
)

var scriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "List available event scripts",
	Long: `List the built-in scripts and the scripts found in the user script
directories. A user script shadows a built-in of the same name.

Examples:
  inputecho scripts
  inputecho replay gamepad`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		exitOnError(runScripts())
	},
}

func runScripts() error {
	scripts, err := script.List()
	if err != nil {
		return err
	}

	fmt.Println("Available scripts:")
	fmt.Println()
	for _, s := range scripts {
		fmt.Printf("  %-16s %3d events  %s\n", s.Name, s.Events, s.Source)
	}
	fmt.Println()
	fmt.Printf("Script directories: %v\n", script.Dirs())
	fmt.Println("Use 'inputecho replay <name>' to route one.")
	return nil
}
