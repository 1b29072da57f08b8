package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wizpr/ringctl/config"
	"github.com/wizpr/ringctl/eventbus"
	"github.com/wizpr/ringctl/gesture"
	"github.com/wizpr/ringctl/llm"
	"github.com/wizpr/ringctl/mapping"
	"github.com/wizpr/ringctl/ring"
	"github.com/wizpr/ringctl/router"
	"github.com/wizpr/ringctl/transport/goble"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [device-address]",
	Short: "Run the gesture-to-action pipeline",
	Long: `Run connects to the ring and drives the full pipeline: notifications are
classified into gesture events, the mapping table resolves each gesture to
application actions, and the action router executes them.

While the listening flag is on, lines typed on stdin become the transcript
buffer and are sent to the active LLM provider. Ring gestures control the
session:

  button_single  toggle_listen         (default)
  button_double  send_last_transcript  (default)
  button_long    cycle_llm             (default)

Edit the mappings section of the settings file to rebind gestures.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

var (
	runTimeout     time.Duration
	runProfile     string
	runTemperature float64
)

func init() {
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 12*time.Second, "Connection timeout per attempt")
	runCmd.Flags().StringVar(&runProfile, "profile", "", "Gesture vocabulary YAML (default: built-in vocabulary)")
	runCmd.Flags().Float64Var(&runTemperature, "temperature", 0.2, "Sampling temperature for LLM generation")
}

func runRun(cmd *cobra.Command, args []string) error {
	logger, err := configureLogger(cmd)
	if err != nil {
		return err
	}

	store := config.NewStore(configPath, logger)
	settings := store.Load()

	// The persisted log level applies when no --log-level flag is given.
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel == "" {
		logger.SetLevel(settings.ParseLogLevel())
	}

	vocab := gesture.DefaultVocabulary()
	if runProfile != "" {
		vocab, err = gesture.LoadVocabulary(runProfile)
		if err != nil {
			return err
		}
	}

	address := ""
	if len(args) == 1 {
		address = args[0]
	} else {
		address = settings.LastBLEAddress
	}
	if address == "" {
		return fmt.Errorf("no device address given and no last address on record; run 'ringctl scan' first")
	}

	cmd.SilenceUsage = true

	bus := eventbus.New(logger)
	ctrl := ring.NewController(goble.New(logger), bus, vocab, logger)

	table := mapping.NewTable(store.Mappings(), logger)

	registry := llm.NewRegistry()
	registry.Register(llm.NewOllama(settings.Ollama.BaseURL))
	registry.Register(llm.NewCompat(settings.OpenAICompat.BaseURL, settings.OpenAICompat.APIKey))
	if settings.OpenAI.APIKey != "" {
		registry.Register(llm.NewOpenAI(settings.OpenAI.APIKey, settings.OpenAI.BaseURL))
	}

	app := &runSession{
		logger:      logger,
		registry:    registry,
		settings:    settings,
		temperature: runTemperature,
	}

	rt := router.New(logger)
	rt.Register("toggle_listen", app.toggleListen)
	rt.Register("send_last_transcript", app.sendLastTranscript)
	rt.Register("cycle_llm", app.cycleLLM)
	rt.Register("noop", func(context.Context, map[string]any) error { return nil })

	// Bind to the loaded vocabulary's topics, not the built-in constants,
	// so a custom profile's gestures reach their mapped actions.
	dispatcher := router.NewDispatcher(table, rt, logger)
	dispatcher.Bind(bus, vocab.Topics()...)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := ctrl.Connect(ctx, address, runTimeout); err != nil {
		return err
	}
	defer func() { _ = ctrl.Disconnect() }()

	if err := store.SetLastAddress(address); err != nil {
		logger.WithError(err).Warn("Failed to persist last device address")
	}

	targets := notifiableChars(ctx, ctrl)
	if len(targets) == 0 {
		return fmt.Errorf("device %s exposes no notifiable characteristics", address)
	}
	for _, uuid := range targets {
		if err := ctrl.SubscribeNotify(uuid); err != nil {
			return err
		}
	}

	color.Green("Connected to %s. Active provider: %s", address, app.activeName())
	fmt.Println("Type a line to feed the transcript buffer (requires listening on). Ctrl-C to quit.")

	go app.readStdin(ctx)

	<-ctx.Done()
	return nil
}

// runSession holds the mutable state the run-loop actions operate on.
type runSession struct {
	logger      *logrus.Logger
	registry    *llm.Registry
	settings    *config.Settings
	temperature float64

	listening atomic.Bool

	mu             sync.Mutex
	lastTranscript string
}

func (s *runSession) activeName() string {
	if p := s.registry.Active(); p != nil {
		return p.DisplayName()
	}
	return "none"
}

// modelFor picks the configured model for the active provider.
func (s *runSession) modelFor(p llm.Provider) string {
	switch p.ID() {
	case "ollama":
		return s.settings.Ollama.Model
	case "openai":
		return s.settings.OpenAI.Model
	case "openai_compat":
		return s.settings.OpenAICompat.Model
	}
	return ""
}

func (s *runSession) toggleListen(_ context.Context, _ map[string]any) error {
	on := !s.listening.Load()
	s.listening.Store(on)
	if on {
		color.Yellow("Listening ON")
	} else {
		color.Yellow("Listening OFF")
	}
	return nil
}

func (s *runSession) sendLastTranscript(ctx context.Context, _ map[string]any) error {
	s.mu.Lock()
	transcript := s.lastTranscript
	s.mu.Unlock()
	if transcript == "" {
		s.logger.Debug("No transcript to send")
		return nil
	}
	return s.send(ctx, transcript)
}

func (s *runSession) cycleLLM(_ context.Context, _ map[string]any) error {
	id := s.registry.Cycle()
	if id == "" {
		return fmt.Errorf("no LLM providers registered")
	}
	color.Cyan("Active provider: %s", s.activeName())
	return nil
}

// send forwards a transcript to the active provider and prints the reply.
func (s *runSession) send(ctx context.Context, transcript string) error {
	p := s.registry.Active()
	if p == nil {
		return fmt.Errorf("no LLM providers registered")
	}
	reply, err := p.Generate(ctx, transcript, s.modelFor(p), s.temperature)
	if err != nil {
		s.logger.WithError(err).WithField("provider", p.ID()).Error("Generation failed")
		color.Red("%s: %v", p.ID(), err)
		return err
	}
	color.New(color.Bold).Printf("%s> ", p.ID())
	fmt.Println(reply)
	return nil
}

// readStdin feeds typed lines into the transcript buffer while listening
// is on. Each accepted line is sent immediately.
func (s *runSession) readStdin(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !s.listening.Load() {
			color.New(color.Faint).Println("(listening is off, line ignored)")
			continue
		}
		s.mu.Lock()
		s.lastTranscript = line
		s.mu.Unlock()
		_ = s.send(ctx, line)
	}
}
