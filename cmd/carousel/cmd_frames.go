package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/carousel"
	"github.com/teranos/carousel/frame"
)

func runFrames(cmd *cobra.Command, opts *options) error {
	cfg, deck, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}
	format, err := frame.ParseFormat(opts.framesFormat)
	if err != nil {
		return err
	}

	layout := carousel.Layout{Width: opts.framesWidth, Height: opts.framesHeight}
	out := cmd.OutOrStdout()

	var names []string
	for i := 0; i < deck.Len(); i++ {
		view, err := carousel.Still(deck, cfg, i, layout)
		if err != nil {
			return err
		}

		fc := frame.DefaultConfig()
		fc.Width, fc.Height = layout.Width, layout.Height
		fc.Background, fc.Foreground = carousel.SlideColors(deck.At(i))

		name := fmt.Sprintf("slide-%02d", i+1)
		path := filepath.Join(opts.framesOut, name+format.Ext())
		if err := frame.WriteFile(path, frame.NewRenderer(fc).Render(view), format); err != nil {
			return err
		}
		names = append(names, name)
		fmt.Fprintln(out, path)
	}

	if opts.baselineDir == "" {
		return nil
	}
	return superviseFrames(cmd, opts, format, names)
}

// superviseFrames accepts the frames as the new baseline or checks them against it.
func superviseFrames(cmd *cobra.Command, opts *options, format frame.Format, names []string) error {
	supervisor := frame.NewSupervisor(opts.baselineDir, opts.framesOut).WithFormat(format)
	out := cmd.OutOrStdout()

	if opts.updateBaseline {
		for _, name := range names {
			if err := supervisor.SetBaseline(name, filepath.Join(opts.framesOut, name+format.Ext())); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "baseline updated: %d frames\n", len(names))
		return nil
	}

	var failed []string
	for _, name := range names {
		if err := supervisor.Validate(name); err != nil {
			fmt.Fprintf(out, "%s: %v\n", name, err)
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d frames differ from baseline: %s", len(failed), strings.Join(failed, ", "))
	}
	fmt.Fprintf(out, "all %d frames match baseline\n", len(names))
	return nil
}
