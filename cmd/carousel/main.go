package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/carousel"
)

// options holds every flag value.
type options struct {
	// Global flags
	configPath string
	deckPath   string
	interval   time.Duration
	pauseMode  string
	logFile    string
	logLevel   string

	// run
	watchDeck bool

	// frames
	framesOut      string
	framesFormat   string
	framesWidth    int
	framesHeight   int
	baselineDir    string
	updateBaseline bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "carousel",
		Short: "Full screen slide carousel for the terminal",
		Long: `carousel shows a deck of slides full screen and advances through them on a timer.

Hovering the slide holds autoplay, arrow keys and the on-screen controls navigate,
and dragging horizontally swipes. Any manual navigation pauses autoplay for one interval.

Run without arguments to show the built-in deck.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCarousel(cmd, opts)
		},
	}

	framesCmd := &cobra.Command{
		Use:   "frames",
		Short: "Render every slide to an image",
		Long: `Renders each slide of the deck as it appears on screen and writes
slide-01.png, slide-02.png, ... into the output directory.

With --baseline the frames are compared against previously accepted images.
Use --update-baseline to accept the current frames.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFrames(cmd, opts)
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a config and deck without starting the carousel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	pf.StringVarP(&opts.deckPath, "deck", "d", "", "YAML deck file (default: built-in deck)")
	pf.DurationVar(&opts.interval, "interval", 0, "Autoplay interval (default 5s)")
	pf.StringVar(&opts.pauseMode, "pause-mode", "", "How pause sources combine: counted or shared")
	pf.StringVar(&opts.logFile, "log-file", "", "Write JSON logs to this file")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.Flags().BoolVarP(&opts.watchDeck, "watch", "w", false, "Reload the deck when its file changes")

	framesCmd.Flags().StringVarP(&opts.framesOut, "out", "o", "frames", "Output directory")
	framesCmd.Flags().StringVarP(&opts.framesFormat, "format", "f", "png", "Image format: png or webp")
	framesCmd.Flags().IntVar(&opts.framesWidth, "width", 80, "Frame width in cells")
	framesCmd.Flags().IntVar(&opts.framesHeight, "height", 24, "Frame height in cells")
	framesCmd.Flags().StringVar(&opts.baselineDir, "baseline", "", "Compare frames against this directory")
	framesCmd.Flags().BoolVar(&opts.updateBaseline, "update-baseline", false, "Copy frames into the baseline directory")

	rootCmd.AddCommand(framesCmd)
	rootCmd.AddCommand(validateCmd)
	return rootCmd
}

// loadSettings resolves the config file, flag overrides and the deck.
func loadSettings(cmd *cobra.Command, opts *options) (carousel.Config, carousel.Deck, error) {
	cfg := carousel.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = carousel.LoadConfig(opts.configPath); err != nil {
			return cfg, carousel.Deck{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("deck") {
		cfg.Deck = opts.deckPath
	}
	if flags.Changed("interval") {
		cfg.Interval = opts.interval
	}
	if flags.Changed("pause-mode") {
		cfg.PauseMode = carousel.PauseMode(opts.pauseMode)
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = opts.logFile
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, carousel.Deck{}, err
	}

	if cfg.Deck == "" {
		return cfg, carousel.DefaultDeck(), nil
	}
	deck, err := carousel.LoadDeck(cfg.Deck)
	if err != nil {
		return cfg, carousel.Deck{}, err
	}
	return cfg, deck, nil
}

func runValidate(cmd *cobra.Command, opts *options) error {
	cfg, deck, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	source := cfg.Deck
	if source == "" {
		source = "built-in deck"
	}
	fmt.Fprintf(out, "%s: %d slides, interval %s, %s pause\n", source, deck.Len(), cfg.Interval, cfg.PauseMode)
	for i, s := range deck.Slides() {
		fmt.Fprintf(out, "  %d. %s\n", i+1, s.Title)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
