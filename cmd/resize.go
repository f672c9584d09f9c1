package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resizer/internal/archive"
	"resizer/internal/collect"
	"resizer/internal/config"
	"resizer/internal/errs"
	"resizer/internal/output"
	"resizer/internal/processor"
	"resizer/internal/tui"
)

var resizeCmd = &cobra.Command{
	Use:   "resize [flags] <path>...",
	Short: "Resize and re-encode images to one target size and format",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResize(cmd.Context(), cfg, logger, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	config.RegisterResizeFlags(resizeCmd.Flags())
	rootCmd.AddCommand(resizeCmd)
}

func runResize(ctx context.Context, cfg config.Config, log *zap.Logger, paths []string, stdout, stderr io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	archivePath, archiveFormat, err := cfg.ArchivePath()
	if err != nil {
		return err
	}

	sources, err := collect.Paths(paths, cfg.Output)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := processor.Options{
		Resize:  cfg.Resize,
		Workers: cfg.Workers,
		Policy:  cfg.Policy(),
		Logger:  log,
	}

	var display *progress
	if !cfg.Quiet && len(sources) > 0 {
		display = startProgress(ctx, cancel, log, len(sources), tea.WithOutput(stderr))
		opts.Observer = display.observer(ctx)
	}

	result, runErr := processor.Run(ctx, sources, opts)
	if display != nil {
		_ = display.finish()
	}
	if errs.IsKind(runErr, errs.KindConfiguration) {
		return runErr
	}
	defer result.Release()

	var written []string
	if cfg.Output != "" && len(result.Successes) > 0 {
		written, err = output.WriteAll(cfg.Output, result.Successes)
		if err != nil {
			return fmt.Errorf("write outputs: %w", err)
		}
	}

	if archivePath != "" {
		bundle, err := archive.Pack(result.Successes, archive.Options{Format: archiveFormat})
		if err != nil {
			return fmt.Errorf("pack archive: %w", err)
		}
		err = output.WriteFile(archivePath, bundle.Bytes)
		bundle.Release()
		if err != nil {
			return fmt.Errorf("write archive: %w", err)
		}
		log.Info("archive written", zap.String("path", archivePath), zap.Int("entries", len(bundle.Entries)))
	}

	if cfg.Manifest != "" {
		m := output.NewManifest(result, cfg.Resize, written, time.Now())
		m.Archive = archivePath
		if err := output.WriteManifest(cfg.Manifest, m); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
	}

	fmt.Fprintln(stdout, tui.RenderSummary(tui.BatchRows(result)))
	if failures := tui.RenderFailures(result.Failures); failures != "" {
		fmt.Fprintln(stdout, failures)
	}
	if len(written) > 0 {
		outPath := cfg.Output
		if abs, absErr := filepath.Abs(cfg.Output); absErr == nil {
			outPath = abs
		}
		fmt.Fprintf(stdout, "Resized files written to: %s\n", outPath)
	}
	if archivePath != "" {
		fmt.Fprintf(stdout, "Archive written to: %s\n", archivePath)
	}

	return runErr
}

// progress runs the bubbletea display for one batch.
type progress struct {
	events chan processor.ItemEvent
	done   chan struct{}
	err    error
}

// startProgress shows a progress view for total items. A ctrl+c in the view
// calls cancel. Once the view stops, for whatever reason, pending events
// are discarded so the observer never blocks the batch.
func startProgress(ctx context.Context, cancel context.CancelFunc, log *zap.Logger, total int, opts ...tea.ProgramOption) *progress {
	p := &progress{
		events: make(chan processor.ItemEvent, 64),
		done:   make(chan struct{}),
	}
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(tui.NewModel(p.events, total), opts...)

	go func() {
		defer close(p.done)
		final, err := program.Run()
		if m, ok := final.(tui.Model); ok && m.Interrupted() {
			cancel()
		}
		if err != nil && ctx.Err() == nil {
			p.err = err
			log.Warn("progress display stopped", zap.Error(err))
		}
		for range p.events {
		}
	}()
	return p
}

func (p *progress) observer(ctx context.Context) processor.Observer {
	return func(ev processor.ItemEvent) {
		select {
		case p.events <- ev:
		case <-ctx.Done():
		}
	}
}

// finish closes the event stream and waits for the display to exit. It
// returns the display's own error, if any.
func (p *progress) finish() error {
	close(p.events)
	<-p.done
	return p.err
}
