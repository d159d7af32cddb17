package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/swarmboard/swarmboard/internal/store"
)

var (
	agentCmd = &cobra.Command{
		Use:   "agent",
		Short: "Agent registry operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	agentRegisterCmd = &cobra.Command{
		Use:   "register <name>",
		Short: "Register an agent (idempotent: an existing name comes back online)",
		Args:  cobra.ExactArgs(1),
		RunE:  runAgentRegister,
	}

	agentListCmd = &cobra.Command{
		Use:   "list",
		Short: "List agents, most recently registered first",
		RunE:  runAgentList,
	}

	agentStatusCmd = &cobra.Command{
		Use:   "status <id> <online|offline|busy>",
		Short: "Set an agent's presence",
		Args:  cobra.ExactArgs(2),
		RunE:  runAgentStatus,
	}

	agentCapabilityCmd = &cobra.Command{
		Use:   "capability <capability>",
		Short: "List online agents with the exact capability",
		RunE:  runAgentCapability,
	}
)

func init() {
	agentRegisterCmd.Flags().String("capabilities", "", "Comma-separated capability tags")
	agentRegisterCmd.Flags().String("endpoint", "", "External endpoint (empty = local agent)")
	agentListCmd.Flags().Bool("json", false, "Output machine-readable JSON")
	agentListCmd.Flags().Bool("online", false, "Only online agents, most recently active first")
	agentCapabilityCmd.Flags().Bool("json", false, "Output machine-readable JSON")

	agentCmd.AddCommand(agentRegisterCmd)
	agentCmd.AddCommand(agentListCmd)
	agentCmd.AddCommand(agentStatusCmd)
	agentCmd.AddCommand(agentCapabilityCmd)
}

func runAgentRegister(cmd *cobra.Command, args []string) error {
	caps, _ := cmd.Flags().GetString("capabilities")
	endpoint, _ := cmd.Flags().GetString("endpoint")

	var capabilities []string
	for _, c := range strings.Split(caps, ",") {
		if c = strings.TrimSpace(c); c != "" {
			capabilities = append(capabilities, c)
		}
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	agent, err := eng.Directory.Register(args[0], capabilities, endpoint)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered agent %q (id %d, %s)\n", agent.Name, agent.ID, agent.Status)
	return nil
}

func runAgentList(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	onlineOnly, _ := cmd.Flags().GetBool("online")

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	var agents []*store.Agent
	if onlineOnly {
		agents = eng.Directory.Online()
	} else {
		agents = eng.Directory.All()
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), agents)
	}
	if len(agents) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No agents registered.")
		return nil
	}
	for _, a := range agents {
		fmt.Fprintf(cmd.OutOrStdout(), "%4d  %-20s %-8s %s\n",
			a.ID, a.Name, a.Status, strings.Join(a.Capabilities, ","))
	}
	return nil
}

func runAgentStatus(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "agent")
	if err != nil {
		return err
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	status := store.AgentStatus(args[1])
	var agent *store.Agent
	if status == store.AgentOffline {
		agent, err = eng.Directory.Disconnect(id)
	} else {
		agent, err = eng.Directory.SetStatus(id, status)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Agent %q is now %s\n", agent.Name, agent.Status)
	return nil
}

func runAgentCapability(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one capability is required")
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	agents := eng.Directory.FindByCapability(args[0])
	if asJSON {
		return printJSON(cmd.OutOrStdout(), agents)
	}
	if len(agents) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No online agents with capability %q.\n", args[0])
		return nil
	}
	for _, a := range agents {
		fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", a.ID, a.Name)
	}
	return nil
}
