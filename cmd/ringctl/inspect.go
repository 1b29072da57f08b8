package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wizpr/ringctl/transport"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <device-address>",
	Short: "Inspect the ring's GATT services and characteristics",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var (
	inspectTimeout time.Duration
	inspectFormat  string
)

func init() {
	inspectCmd.Flags().DurationVar(&inspectTimeout, "timeout", 12*time.Second, "Connection timeout per attempt")
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "tree", "Output format (tree, json)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	if inspectFormat != "tree" && inspectFormat != "json" {
		return fmt.Errorf("invalid format %q: must be tree or json", inspectFormat)
	}

	logger, err := configureLogger(cmd)
	if err != nil {
		return err
	}

	cmd.SilenceUsage = true

	ctrl := newRingController(logger, nil)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := ctrl.Connect(ctx, args[0], inspectTimeout); err != nil {
		return err
	}
	defer func() { _ = ctrl.Disconnect() }()

	services := ctrl.ListCharacteristics(ctx)
	return printServices(services, inspectFormat)
}

func printServices(services []transport.Service, format string) error {
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(services)
	}

	if len(services) == 0 {
		fmt.Println("No services discovered.")
		return nil
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	for _, svc := range services {
		bold.Printf("service %s", svc.UUID)
		if svc.Description != "" {
			faint.Printf("  (%s)", svc.Description)
		}
		fmt.Println()

		for _, char := range svc.Characteristics {
			fmt.Printf("  char %s  [%s]", char.UUID, char.Properties)
			if char.Description != "" {
				faint.Printf("  (%s)", char.Description)
			}
			fmt.Println()
		}
	}
	return nil
}
