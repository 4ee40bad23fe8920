package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Iron-Ham/leash/internal/config"
	"github.com/Iron-Ham/leash/internal/event"
	"github.com/Iron-Ham/leash/internal/logging"
	"github.com/Iron-Ham/leash/internal/operation"
	"github.com/spf13/cobra"
)

var (
	demoUser     string
	demoSteps    int
	demoInterval time.Duration
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a simulated operation through the timeout engine",
	Long: `Run a simulated operation through the timeout engine.

A scripted event stream stands in for the assistant transport: content
deltas arrive on a fixed interval and the stream completes at the end.
Progress updates print to stdout and the engine logs per the logging
configuration. Useful for verifying a config before deploying it.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().StringVar(&demoUser, "user", "demo", "user id for the simulated operation")
	demoCmd.Flags().IntVar(&demoSteps, "steps", 10, "number of content deltas to stream")
	demoCmd.Flags().DurationVar(&demoInterval, "interval", 300*time.Millisecond, "delay between deltas")
}

// newEngineLogger builds the process logger from the logging config:
// nop when disabled, stderr when no directory is set, otherwise a
// rotating file logger.
func newEngineLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	if cfg.Logging.Dir == "" {
		return logging.NewLogger("", cfg.Logging.Level)
	}
	return logging.NewLoggerWithRotation(cfg.Logging.Dir, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   true,
	})
}

// consoleSink renders progress and notices to the terminal.
type consoleSink struct {
	cmd *cobra.Command
}

func (s consoleSink) UpdateProgress(text string) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	s.cmd.Printf("progress> %s\n", lines[len(lines)-1])
}

func (s consoleSink) Notify(text string) {
	s.cmd.Printf("notice> %s\n", text)
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newEngineLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	bus := event.NewBus()
	bus.SubscribeAll(func(e event.Event) {
		logger.Debug("event published", "type", e.EventType())
	})

	m := operation.NewManager(operation.TimingFromConfig(cfg.Operation),
		operation.WithBus(bus),
		operation.WithLogger(logger),
	)

	events := make(chan operation.StreamEvent)
	h, err := m.Start(cmd.Context(), demoUser, events, consoleSink{cmd: cmd})
	if err != nil {
		return err
	}

	go func() {
		for i := 0; i < demoSteps; i++ {
			events <- operation.ContentDelta(fmt.Sprintf("step %d of %d\n", i+1, demoSteps))
			time.Sleep(demoInterval)
		}
		events <- operation.Completed()
	}()

	<-h.Done()
	res := h.Result()
	cmd.Printf("operation %s: %s in %s (%d auto extensions)\n",
		h.OperationID, res.Status, res.Runtime.Round(time.Millisecond), res.AutoExtensions)
	return res.Err
}
