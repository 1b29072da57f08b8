package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wizpr/ringctl/eventbus"
	"github.com/wizpr/ringctl/gesture"
	"github.com/wizpr/ringctl/ring"
)

// subscribeCmd represents the subscribe command
var subscribeCmd = &cobra.Command{
	Use:   "subscribe <device-address>",
	Short: "Subscribe to ring notifications and print classified gestures",
	Long: `Subscribe connects to the ring, enables notifications on the given
characteristic (or every notifiable characteristic when none is given) and
prints each incoming event until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runSubscribe,
}

var (
	subscribeTimeout time.Duration
	subscribeChars   []string
	subscribeRaw     bool
)

func init() {
	subscribeCmd.Flags().DurationVar(&subscribeTimeout, "timeout", 12*time.Second, "Connection timeout per attempt")
	subscribeCmd.Flags().StringArrayVarP(&subscribeChars, "char", "c", nil, "Characteristic UUID to subscribe to (repeatable, default: all notifiable)")
	subscribeCmd.Flags().BoolVar(&subscribeRaw, "raw", false, "Also print raw notification payloads")
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	logger, err := configureLogger(cmd)
	if err != nil {
		return err
	}

	cmd.SilenceUsage = true

	bus := eventbus.New(logger)
	ctrl := newRingController(logger, bus)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := ctrl.Connect(ctx, args[0], subscribeTimeout); err != nil {
		return err
	}
	defer func() { _ = ctrl.Disconnect() }()

	targets := subscribeChars
	if len(targets) == 0 {
		targets = notifiableChars(ctx, ctrl)
		if len(targets) == 0 {
			return fmt.Errorf("device %s exposes no notifiable characteristics", args[0])
		}
	}

	// Bounded queue between bus handlers and the printer. When the
	// terminal cannot keep up the oldest event is dropped, never the
	// handler blocked.
	events := make(chan gesture.Event, 64)
	enqueue := func(ev gesture.Event) {
		for {
			select {
			case events <- ev:
				return
			default:
			}
			select {
			case <-events:
			default:
			}
		}
	}

	topics := gesture.Topics()
	if subscribeRaw {
		topics = append(topics, gesture.TopicRawNotify)
	}
	for _, topic := range topics {
		topic := topic
		bus.Subscribe(topic, func(_ context.Context, payload any) error {
			enqueue(gesture.Event{Topic: topic, Payload: payload})
			return nil
		})
	}

	for _, uuid := range targets {
		if err := ctrl.SubscribeNotify(uuid); err != nil {
			return err
		}
		logger.WithField("char", uuid).Info("Subscribed to notifications")
	}

	color.Green("Listening for notifications on %s. Press Ctrl-C to stop.", args[0])

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			printEvent(ev)
		}
	}
}

// notifiableChars lists every characteristic that supports Notify or
// Indicate on the connected device.
func notifiableChars(ctx context.Context, ctrl *ring.Controller) []string {
	var uuids []string
	for _, svc := range ctrl.ListCharacteristics(ctx) {
		for _, char := range svc.Characteristics {
			if char.Notifiable() {
				uuids = append(uuids, char.UUID)
			}
		}
	}
	return uuids
}

func printEvent(ev gesture.Event) {
	stamp := time.Now().Format("15:04:05.000")
	switch p := ev.Payload.(type) {
	case gesture.GesturePayload:
		color.New(color.Bold).Printf("%s  %-14s", stamp, ev.Topic)
		fmt.Printf("  char=%s text=%q\n", p.UUID, p.Text)
	case gesture.NotifyPayload:
		color.New(color.Faint).Printf("%s  %-14s  char=%s data=%s\n", stamp, ev.Topic, p.UUID, p.DataHex)
	default:
		fmt.Printf("%s  %-14s  %v\n", stamp, ev.Topic, ev.Payload)
	}
}
