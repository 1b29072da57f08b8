package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wizpr/ringctl/eventbus"
	"github.com/wizpr/ringctl/ring"
	"github.com/wizpr/ringctl/transport/goble"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for BLE devices",
	Long: `Scan for nearby Bluetooth Low Energy devices and display their
addresses, names, and signal strength. Results are deduplicated by address
(keeping the most recent advertisement) and sorted by descending RSSI.`,
	RunE: runScan,
}

var (
	scanDuration time.Duration
	scanFormat   string
)

func init() {
	scanCmd.Flags().DurationVarP(&scanDuration, "duration", "d", 5*time.Second, "Scan duration")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "table", "Output format (table, json)")
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanFormat != "table" && scanFormat != "json" {
		return fmt.Errorf("invalid format %q: must be table or json", scanFormat)
	}

	logger, err := configureLogger(cmd)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	ctrl := newRingController(logger, nil)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	devices, err := ctrl.Scan(ctx, scanDuration)
	if err != nil {
		return err
	}

	return printDevices(devices, scanFormat)
}

// newRingController wires the go-ble transport into a controller. The bus is
// only consumed by commands that subscribe to notifications; scan/connect
// style commands leave it idle.
func newRingController(logger *logrus.Logger, bus *eventbus.Bus) *ring.Controller {
	if bus == nil {
		bus = eventbus.New(logger)
	}
	return ring.NewController(goble.New(logger), bus, nil, logger)
}

// signalContext cancels the returned context on SIGINT/SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func printDevices(devices []ring.Device, format string) error {
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(devices)
	}

	if len(devices) == 0 {
		fmt.Println("No devices found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ADDRESS\tNAME\tRSSI")
	for _, d := range devices {
		name := d.Name
		if name == "" {
			name = color.New(color.Faint).Sprint("(unknown)")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", d.Address, name, d.RSSI)
	}
	return w.Flush()
}
