package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the platform-wide overview",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Bool("json", false, "Output machine-readable JSON")
	statsCmd.Flags().Int64("agent", 0, "Show one agent's performance instead")
	statsCmd.Flags().Bool("timeline", false, "Show per-day creation counts instead")
}

func runStats(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	agentID, _ := cmd.Flags().GetInt64("agent")
	timeline, _ := cmd.Flags().GetBool("timeline")

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	if agentID != 0 {
		perf, err := eng.Analytics.AgentPerformance(agentID)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), perf)
		}
		printHeader("📈 Agent Performance")
		fmt.Fprintf(cmd.OutOrStdout(), "Agent: %s\nTasks: %d (%d completed, %d pending)\nCompletion rate: %.1f%%\nInnovations: %d (WOW total %d)\n",
			perf.Agent, perf.TotalTasks, perf.CompletedTasks, perf.PendingTasks,
			perf.CompletionRate, perf.Innovations, perf.TotalWowScore)
		return nil
	}

	if timeline {
		days := eng.Analytics.Timeline()
		if asJSON {
			return printJSON(cmd.OutOrStdout(), days)
		}
		for _, d := range days {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  agents=%d tasks=%d innovations=%d\n",
				d.Date, d.Agents, d.Tasks, d.Innovations)
		}
		return nil
	}

	overview := eng.Analytics.Overview()
	if asJSON {
		return printJSON(cmd.OutOrStdout(), overview)
	}
	printHeader("📊 Swarmboard Overview")
	fmt.Fprintf(cmd.OutOrStdout(), "Agents: %d (%d online)\n", overview.TotalAgents, overview.OnlineAgents)
	fmt.Fprintf(cmd.OutOrStdout(), "Tasks: %d (%d pending, %d completed, %.1f%% completion)\n",
		overview.TotalTasks, overview.PendingTasks, overview.CompletedTasks, overview.TaskCompletionRate)
	fmt.Fprintf(cmd.OutOrStdout(), "Discussions: %d (%d active), %d messages\n",
		overview.TotalDiscussions, overview.ActiveDiscussions, overview.TotalMessages)
	fmt.Fprintf(cmd.OutOrStdout(), "Innovations: %d (WOW total %d)\n",
		overview.TotalInnovations, overview.TotalWowScore)
	return nil
}
