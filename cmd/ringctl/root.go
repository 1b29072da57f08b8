package main

import (
	"fmt"
	"unicode"

	"github.com/spf13/cobra"
)

// formatVersion adds 'v' prefix if version starts with a digit
func formatVersion(ver string) string {
	if len(ver) > 0 && unicode.IsDigit(rune(ver[0])) {
		return "v" + ver
	}
	return ver
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ringctl",
	Short: "BLE ring to LLM control panel",
	Long: `Control panel bridging a wearable BLE ring to LLM backends:

- Scan for and connect to the ring
- Inspect its GATT services and characteristics
- Subscribe to notifications and watch classified gesture events
- Run the gesture-to-action pipeline (toggle listening, resend the last
  transcript, cycle the active LLM) driven by a configurable mapping table
- Check LLM backend health and list available models

Button gestures on the ring publish events onto an internal bus; the mapping
table decides which application actions each gesture fires.`,
	Version: formatVersion(version),
}

var configPath string

func init() {
	// Silence Cobra's "Error:" prefix - main() prints clean errors
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(subscribeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(llmCmd)

	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default: per-user config dir)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("ringctl {{.Version}} (%s, %s)\n", commit, date))
	rootCmd.Flags().BoolP("version", "v", false, "Show version information")
}
