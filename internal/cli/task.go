package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/swarmboard/swarmboard/internal/store"
	"github.com/swarmboard/swarmboard/internal/tasks"
)

var (
	taskCmd = &cobra.Command{
		Use:   "task",
		Short: "Task lifecycle operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	taskCreateCmd = &cobra.Command{
		Use:   "create <title>",
		Short: "Create a pending task",
		Args:  cobra.ExactArgs(1),
		RunE:  runTaskCreate,
	}

	taskAssignCmd = &cobra.Command{
		Use:   "assign <task-id> [agent-id]",
		Short: "Assign a pending task; without an agent id the least-loaded online agent is chosen",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runTaskAssign,
	}

	taskCompleteCmd = &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE:  runTaskComplete,
	}

	taskStatusCmd = &cobra.Command{
		Use:   "status <task-id> <pending|in_progress|completed|cancelled>",
		Short: "Write a lifecycle state directly (this is how tasks are cancelled)",
		Args:  cobra.ExactArgs(2),
		RunE:  runTaskStatus,
	}

	taskListCmd = &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		RunE:  runTaskList,
	}

	taskStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show task counts by status",
		RunE:  runTaskStats,
	}
)

func init() {
	taskCreateCmd.Flags().String("description", "", "Task description")
	taskCreateCmd.Flags().Int64("creator", 0, "Creator agent id (required)")
	taskCreateCmd.Flags().Int("priority", 0, "Priority, higher is more urgent")
	taskListCmd.Flags().Bool("json", false, "Output machine-readable JSON")
	taskListCmd.Flags().Bool("pending", false, "Only pending tasks, highest priority first")
	taskListCmd.Flags().Int64("agent", 0, "Only tasks assigned to this agent")
	taskStatsCmd.Flags().Bool("json", false, "Output machine-readable JSON")

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskAssignCmd)
	taskCmd.AddCommand(taskCompleteCmd)
	taskCmd.AddCommand(taskStatusCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskStatsCmd)
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s id %q", what, raw)
	}
	return id, nil
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	description, _ := cmd.Flags().GetString("description")
	creator, _ := cmd.Flags().GetInt64("creator")
	priority, _ := cmd.Flags().GetInt("priority")
	if creator == 0 {
		return fmt.Errorf("--creator is required")
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	task, err := eng.Tasks.Create(args[0], description, creator, priority)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created task %d: %s (priority %d)\n", task.ID, task.Title, task.Priority)
	return nil
}

func runTaskAssign(cmd *cobra.Command, args []string) error {
	taskID, err := parseID(args[0], "task")
	if err != nil {
		return err
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	var task *tasks.Detail
	if len(args) == 2 {
		agentID, err := parseID(args[1], "agent")
		if err != nil {
			return err
		}
		task, err = eng.Tasks.Assign(taskID, agentID)
		if err != nil {
			return err
		}
	} else {
		task, err = eng.Tasks.AutoAssign(taskID)
		if err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %d assigned to %s\n", task.ID, strOrDash(task.AssignedName))
	return nil
}

func runTaskComplete(cmd *cobra.Command, args []string) error {
	taskID, err := parseID(args[0], "task")
	if err != nil {
		return err
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	task, err := eng.Tasks.Complete(taskID, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %d completed at %s\n", task.ID, task.CompletedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runTaskStatus(cmd *cobra.Command, args []string) error {
	taskID, err := parseID(args[0], "task")
	if err != nil {
		return err
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	task, err := eng.Tasks.UpdateStatus(taskID, store.TaskStatus(args[1]))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %d is now %s\n", task.ID, task.Status)
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	pendingOnly, _ := cmd.Flags().GetBool("pending")
	agentID, _ := cmd.Flags().GetInt64("agent")

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	var list []*tasks.Detail
	switch {
	case agentID != 0:
		list = eng.Tasks.ByAgent(agentID)
	case pendingOnly:
		list = eng.Tasks.Pending()
	default:
		list = eng.Tasks.All()
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), list)
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
		return nil
	}
	for _, t := range list {
		fmt.Fprintf(cmd.OutOrStdout(), "%4d  %-12s p%-3d %-30s creator=%s assigned=%s\n",
			t.ID, t.Status, t.Priority, t.Title, strOrDash(t.CreatorName), strOrDash(t.AssignedName))
	}
	return nil
}

func runTaskStats(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	stats := eng.Tasks.Stats()
	if asJSON {
		return printJSON(cmd.OutOrStdout(), stats)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\nPending: %d\nIn progress: %d\nCompleted: %d\nCancelled: %d\n",
		stats.Total, stats.Pending, stats.InProgress, stats.Completed, stats.Cancelled)
	return nil
}
