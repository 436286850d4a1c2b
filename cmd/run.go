package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/tonesnap/internal/app"
	"github.com/abhisek/tonesnap/internal/frame"
	"github.com/abhisek/tonesnap/internal/grading"
	"github.com/abhisek/tonesnap/internal/quiz"
	"github.com/abhisek/tonesnap/internal/speech"
)

// runApp builds dependencies, launches the TUI and prints the session's
// usage once it exits.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	b, err := openBackend(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer b.Close()

	cfg := b.cfg
	eventRepo := b.store.EventRepo()

	camera := frame.NewDeviceSource(cfg.Device, cfg.CaptureCommand, frame.DefaultOptions())
	defer camera.Close()

	opts := app.Options{
		Generator:    quiz.NewGenerator(b.provider, quiz.DefaultConfig(), b.log),
		Checker:      quiz.NewToneChecker(b.provider, b.log),
		Camera:       camera,
		DeviceName:   cfg.Device,
		FrameOptions: frame.DefaultOptions(),
		Grading: grading.Config{
			SubmitDelay: cfg.SubmitDelay,
			RevertDelay: cfg.RevertDelay,
		},
		Recorder: eventRepo,
		Log:      b.log,
	}

	catalog := speech.LoadCatalog(ctx, b.log, speech.DefaultBackends()...)
	if catalog.Available() {
		opts.Speaker = speech.NewSpeaker(catalog, cfg.Voice, b.log)
	} else {
		b.log.Info("speech disabled: no synthesiser found")
	}

	if err := app.Run(opts); err != nil {
		return err
	}

	if err := printSummary(ctx, os.Stdout, eventRepo); err != nil {
		fmt.Fprintln(os.Stderr, "usage summary:", err)
	}
	return nil
}
