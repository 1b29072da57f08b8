package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wizpr/ringctl/config"
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect [device-address]",
	Short: "Verify connectivity to the ring",
	Long: `Connect to the ring, report the result, and disconnect.

With no address argument the last successfully connected address from the
settings file is used. A successful connect updates that stored address.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConnect,
}

var connectTimeout time.Duration

func init() {
	connectCmd.Flags().DurationVar(&connectTimeout, "timeout", 12*time.Second, "Connection timeout per attempt")
}

func runConnect(cmd *cobra.Command, args []string) error {
	logger, err := configureLogger(cmd)
	if err != nil {
		return err
	}

	store := config.NewStore(configPath, logger)

	address := ""
	if len(args) == 1 {
		address = args[0]
	} else {
		address = store.Load().LastBLEAddress
	}
	if address == "" {
		return fmt.Errorf("no device address given and none remembered; run 'ringctl scan' first")
	}

	cmd.SilenceUsage = true

	ctrl := newRingController(logger, nil)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := ctrl.Connect(ctx, address, connectTimeout); err != nil {
		return err
	}
	defer func() { _ = ctrl.Disconnect() }()

	if err := store.SetLastAddress(address); err != nil {
		logger.WithError(err).Warn("Failed to remember device address")
	}

	color.Green("Connected to %s", address)
	services := ctrl.ListCharacteristics(ctx)
	fmt.Printf("Discovered %d services.\n", len(services))
	return nil
}
