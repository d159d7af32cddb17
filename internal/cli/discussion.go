package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	discussionCmd = &cobra.Command{
		Use:   "discussion",
		Short: "Discussion thread operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	discussionCreateCmd = &cobra.Command{
		Use:   "create <topic>",
		Short: "Open a new active discussion",
		Args:  cobra.ExactArgs(1),
		RunE:  runDiscussionCreate,
	}

	discussionCloseCmd = &cobra.Command{
		Use:   "close <id>",
		Short: "Close a discussion (one-way; closing twice is a no-op)",
		Args:  cobra.ExactArgs(1),
		RunE:  runDiscussionClose,
	}

	discussionPostCmd = &cobra.Command{
		Use:   "post <discussion-id> <content>",
		Short: "Post a message to an active discussion",
		Args:  cobra.ExactArgs(2),
		RunE:  runDiscussionPost,
	}

	discussionMessagesCmd = &cobra.Command{
		Use:   "messages <discussion-id>",
		Short: "Show a discussion's most recent messages in posting order",
		Args:  cobra.ExactArgs(1),
		RunE:  runDiscussionMessages,
	}

	discussionListCmd = &cobra.Command{
		Use:   "list",
		Short: "List discussions with message counts, newest first",
		RunE:  runDiscussionList,
	}

	discussionStatsCmd = &cobra.Command{
		Use:   "stats <discussion-id>",
		Short: "Show message and participant counts for a discussion",
		Args:  cobra.ExactArgs(1),
		RunE:  runDiscussionStats,
	}

	discussionSuggestCmd = &cobra.Command{
		Use:   "suggest <discussion-id>",
		Short: "List online agents that have not posted in the discussion",
		Args:  cobra.ExactArgs(1),
		RunE:  runDiscussionSuggest,
	}

	discussionDeleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a discussion and all its messages",
		Args:  cobra.ExactArgs(1),
		RunE:  runDiscussionDelete,
	}
)

func init() {
	discussionPostCmd.Flags().Int64("agent", 0, "Posting agent id (required)")
	discussionMessagesCmd.Flags().Int("limit", 0, "Keep only the most recent N messages")
	discussionMessagesCmd.Flags().Bool("json", false, "Output machine-readable JSON")
	discussionListCmd.Flags().Bool("json", false, "Output machine-readable JSON")
	discussionListCmd.Flags().Bool("active", false, "Only active discussions")
	discussionStatsCmd.Flags().Bool("json", false, "Output machine-readable JSON")

	discussionCmd.AddCommand(discussionCreateCmd)
	discussionCmd.AddCommand(discussionCloseCmd)
	discussionCmd.AddCommand(discussionPostCmd)
	discussionCmd.AddCommand(discussionMessagesCmd)
	discussionCmd.AddCommand(discussionListCmd)
	discussionCmd.AddCommand(discussionStatsCmd)
	discussionCmd.AddCommand(discussionSuggestCmd)
	discussionCmd.AddCommand(discussionDeleteCmd)
}

func runDiscussionCreate(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	disc, err := eng.Discussions.Create(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created discussion %d: %s\n", disc.ID, disc.Topic)
	return nil
}

func runDiscussionClose(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "discussion")
	if err != nil {
		return err
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	disc, err := eng.Discussions.Close(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Discussion %d is %s\n", disc.ID, disc.Status)
	return nil
}

func runDiscussionPost(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "discussion")
	if err != nil {
		return err
	}
	agentID, _ := cmd.Flags().GetInt64("agent")
	if agentID == 0 {
		return fmt.Errorf("--agent is required")
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	msg, err := eng.Discussions.AddMessage(id, agentID, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Message %d posted by %s\n", msg.ID, strOrDash(msg.AgentName))
	return nil
}

func runDiscussionMessages(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "discussion")
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	if _, err := eng.Discussions.Get(id); err != nil {
		return err
	}
	msgs := eng.Discussions.Messages(id, limit)
	if asJSON {
		return printJSON(cmd.OutOrStdout(), msgs)
	}
	if len(msgs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No messages.")
		return nil
	}
	for _, m := range msgs {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n",
			m.CreatedAt.Format("15:04:05"), strOrDash(m.AgentName), m.Content)
	}
	return nil
}

func runDiscussionList(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	activeOnly, _ := cmd.Flags().GetBool("active")

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	list := eng.Discussions.All()
	if activeOnly {
		list = eng.Discussions.Active()
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), list)
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No discussions.")
		return nil
	}
	for _, d := range list {
		fmt.Fprintf(cmd.OutOrStdout(), "%4d  %-8s %-40s %d messages\n",
			d.ID, d.Status, d.Topic, d.MessageCount)
	}
	return nil
}

func runDiscussionStats(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "discussion")
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	stats, err := eng.Discussions.Stats(id)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), stats)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Messages: %d\nParticipants: %d\n", stats.TotalMessages, stats.Participants)
	for name, n := range stats.MessageDistribution {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %d\n", name, n)
	}
	return nil
}

func runDiscussionSuggest(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "discussion")
	if err != nil {
		return err
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	agents, err := eng.Discussions.SuggestAgents(id)
	if err != nil {
		return err
	}
	if len(agents) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Every online agent has already posted.")
		return nil
	}
	for _, a := range agents {
		fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", a.ID, a.Name)
	}
	return nil
}

func runDiscussionDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "discussion")
	if err != nil {
		return err
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.Discussions.Delete(id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Discussion %d deleted\n", id)
	return nil
}
