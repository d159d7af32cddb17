// Package cli implements the swarmboard command line interface. Commands
// operate the coordination engine directly against the configured store.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/swarmboard/swarmboard/internal/cli.version=1.2.3"
	version = "0.3.0"
	logo    = "\n" +
		"  ____                                _                         _\n" +
		" / ___|_      ____ _ _ __ _ __ ___   | |__   ___   __ _ _ __ __| |\n" +
		" \\___ \\ \\ /\\ / / _` | '__| '_ ` _ \\  | '_ \\ / _ \\ / _` | '__/ _` |\n" +
		"  ___) \\ V  V / (_| | |  | | | | | | | |_) | (_) | (_| | | | (_| |\n" +
		" |____/ \\_/\\_/ \\__,_|_|  |_| |_| |_| |_.__/ \\___/ \\__,_|_|  \\__,_|\n"
)

var rootCmd = &cobra.Command{
	Use:   "swarmboard",
	Short: "Swarmboard - multi-agent coordination engine",
	Long:  color.CyanString(logo) + "\nCoordinate autonomous agents: tasks, discussions and innovations.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(discussionCmd)
	rootCmd.AddCommand(innovationCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}
