package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set by ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:   "openproject-mcp",
	Short: "OpenProject weekly report synthesis engine",
	Long: `openproject-mcp turns raw OpenProject work package data into weekly
Agile/Scrum reports. It exposes the report pipeline three ways: as an MCP
stdio server for AI assistants, as an HTTP API, and as a one-shot CLI run.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("openproject-mcp %s\ncommit: %s\n", version, commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd, mcpCmd, serveCmd, reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
