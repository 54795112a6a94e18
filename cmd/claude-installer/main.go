package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "claude-installer",
	Short: "Install agents, commands, hooks, MCP servers and plugins for AI coding CLIs",
	Long: "claude-installer compares a source bundle with the configuration directory of Claude Code or Codex CLI " +
		"and installs, updates or removes its components interactively.",
	SilenceUsage: true,
	RunE:         runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("claude-installer %s\n", version)
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&flags.configPath, "config", "", "config file (default ~/.claude-installer/config.yaml)")
	f.StringVar(&flags.source, "source", "", "source bundle directory (default current directory)")
	f.StringVar(&flags.target, "target", "", "target CLI: claude or codex")
	f.StringVar(&flags.dest, "dest", "", "destination directory (default ~/.claude or ~/.codex)")
	f.StringVar(&flags.scope, "scope", "", "MCP scope: user or local")
	f.StringVar(&flags.project, "project", "", "project directory for local MCP scope")
	f.StringVar(&flags.logFile, "log-file", "", "log file (default ~/.claude-installer/installer.log)")
	f.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
