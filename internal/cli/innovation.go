package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/swarmboard/swarmboard/internal/innovation"
)

var (
	innovationCmd = &cobra.Command{
		Use:   "innovation",
		Short: "Innovation catalog operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	innovationCreateCmd = &cobra.Command{
		Use:   "create <title>",
		Short: "Record an innovation and compute its WOW score",
		Args:  cobra.ExactArgs(1),
		RunE:  runInnovationCreate,
	}

	innovationUpvoteCmd = &cobra.Command{
		Use:   "upvote <id>",
		Short: "Upvote an innovation (+1 WOW)",
		Args:  cobra.ExactArgs(1),
		RunE:  runInnovationUpvote,
	}

	innovationTopCmd = &cobra.Command{
		Use:   "top",
		Short: "Show the top-rated innovations",
		RunE:  runInnovationTop,
	}

	innovationListCmd = &cobra.Command{
		Use:   "list",
		Short: "List innovations, newest first",
		RunE:  runInnovationList,
	}

	innovationStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show catalog totals and category breakdown",
		RunE:  runInnovationStats,
	}
)

func init() {
	innovationCreateCmd.Flags().String("description", "", "Innovation description")
	innovationCreateCmd.Flags().String("category", "", "Category (derived from the text when empty)")
	innovationCreateCmd.Flags().String("agents", "", "Comma-separated ids of involved agents")
	innovationCreateCmd.Flags().String("output", "", "Opaque output payload as a JSON object")
	innovationTopCmd.Flags().Int("limit", 10, "Number of innovations to show")
	innovationTopCmd.Flags().Bool("json", false, "Output machine-readable JSON")
	innovationListCmd.Flags().Bool("json", false, "Output machine-readable JSON")
	innovationListCmd.Flags().String("category", "", "Only this exact category")
	innovationStatsCmd.Flags().Bool("json", false, "Output machine-readable JSON")

	innovationCmd.AddCommand(innovationCreateCmd)
	innovationCmd.AddCommand(innovationUpvoteCmd)
	innovationCmd.AddCommand(innovationTopCmd)
	innovationCmd.AddCommand(innovationListCmd)
	innovationCmd.AddCommand(innovationStatsCmd)
}

func runInnovationCreate(cmd *cobra.Command, args []string) error {
	description, _ := cmd.Flags().GetString("description")
	category, _ := cmd.Flags().GetString("category")
	agentsRaw, _ := cmd.Flags().GetString("agents")
	outputRaw, _ := cmd.Flags().GetString("output")

	var agents []int64
	for _, part := range strings.Split(agentsRaw, ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid agent id %q", part)
		}
		agents = append(agents, id)
	}

	var output map[string]any
	if outputRaw != "" {
		if err := json.Unmarshal([]byte(outputRaw), &output); err != nil {
			return fmt.Errorf("parse --output: %w", err)
		}
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	inn, err := eng.Innovations.Create(args[0], description, category, agents, output)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Innovation %d recorded in %q\n", inn.ID, inn.Category)
	fmt.Fprintf(cmd.OutOrStdout(), "WOW %d %s %s\n",
		inn.WowScore, innovation.StarRating(inn.WowScore), innovation.Level(inn.WowScore))
	return nil
}

func runInnovationUpvote(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "innovation")
	if err != nil {
		return err
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	inn, err := eng.Innovations.Upvote(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Innovation %d now at WOW %d\n", inn.ID, inn.WowScore)
	return nil
}

func runInnovationTop(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	top := eng.Innovations.Top(limit)
	if asJSON {
		return printJSON(cmd.OutOrStdout(), top)
	}
	if len(top) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No innovations recorded.")
		return nil
	}
	for i, inn := range top {
		fmt.Fprintf(cmd.OutOrStdout(), "%2d. [%2d] %-40s %s\n",
			i+1, inn.WowScore, inn.Title, innovation.Level(inn.WowScore))
	}
	return nil
}

func runInnovationList(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	category, _ := cmd.Flags().GetString("category")

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	list := eng.Innovations.All()
	if category != "" {
		list = eng.Innovations.ByCategory(category)
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), list)
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No innovations recorded.")
		return nil
	}
	for _, inn := range list {
		fmt.Fprintf(cmd.OutOrStdout(), "%4d  [%2d] %-16s %s\n",
			inn.ID, inn.WowScore, inn.Category, inn.Title)
	}
	return nil
}

func runInnovationStats(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	stats := eng.Innovations.Stats()
	if asJSON {
		return printJSON(cmd.OutOrStdout(), stats)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\nAverage WOW: %.2f\n", stats.Total, stats.AverageWowScore)
	for cat, n := range stats.ByCategory {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-16s %d\n", cat, n)
	}
	return nil
}
