package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/swarmboard/swarmboard/internal/config"
	"github.com/swarmboard/swarmboard/internal/engine"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ Swarmboard Version")
		fmt.Printf("Version: %s\n", version)
	},
}

func printHeader(title string) {
	color.Cyan("\n%s\n", title)
}

// openEngine loads configuration and assembles the engine. Callers must
// Close it.
func openEngine() (*engine.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return engine.New(cfg)
}

// printJSON writes payload as indented JSON.
func printJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func strOrDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
