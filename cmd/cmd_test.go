package cmd

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"resizer/internal/config"
	"resizer/internal/errs"
	"resizer/internal/fixture"
	"resizer/internal/processor"
)

func writeInputs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.png"), fixture.PNG(160, 90), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.jpg"), fixture.Corrupt(), 0o644))
	return dir
}

func quietConfig(t *testing.T) config.Config {
	c := config.Default()
	c.Quiet = true
	c.Resize.Width = 80
	c.Resize.Height = 80
	c.Output = filepath.Join(t.TempDir(), "out")
	return c
}

func TestRunResizeWritesOutputsArchiveAndManifest(t *testing.T) {
	in := writeInputs(t)
	c := quietConfig(t)
	c.Archive = t.TempDir() + string(os.PathSeparator)
	c.Manifest = filepath.Join(t.TempDir(), "manifest.json")

	var stdout bytes.Buffer
	err := runResize(context.Background(), c, zaptest.NewLogger(t), []string{in}, &stdout, &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(c.Output, "photo_resized.jpg"))
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 80, img.Bounds().Dx())
	assert.Equal(t, 45, img.Bounds().Dy())

	archivePath := filepath.Join(c.Archive, "resized-images.zip")
	zr, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 1)
	assert.Equal(t, "photo_resized.jpg", zr.File[0].Name)

	manifest, err := os.ReadFile(c.Manifest)
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `"corrupt_data"`)

	out := stdout.String()
	assert.Contains(t, out, "1 of 2 images processed")
	assert.Contains(t, out, "broken.jpg")
}

func TestRunResizeFailFast(t *testing.T) {
	in := writeInputs(t)
	c := quietConfig(t)
	c.FailFast = true
	c.Workers = 1

	var stdout bytes.Buffer
	err := runResize(context.Background(), c, zaptest.NewLogger(t), []string{filepath.Join(in, "broken.jpg"), filepath.Join(in, "photo.png")}, &stdout, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindCorruptData), "got %v", err)
	assert.Contains(t, stdout.String(), "of 2 images processed")
	assert.Contains(t, stdout.String(), "broken.jpg")
}

func TestRunResizeRejectsConfiguration(t *testing.T) {
	c := quietConfig(t)
	c.Resize.Width = 0

	err := runResize(context.Background(), c, zaptest.NewLogger(t), []string{writeInputs(t)}, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindConfiguration))

	_, statErr := os.Stat(c.Output)
	assert.True(t, os.IsNotExist(statErr), "nothing is written on configuration errors")
}

func TestRunResizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout bytes.Buffer
	err := runResize(ctx, quietConfig(t), zaptest.NewLogger(t), []string{writeInputs(t)}, &stdout, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindCancelled))
	assert.Contains(t, stdout.String(), "0 of 2 images processed")
}

func TestRunInspect(t *testing.T) {
	in := writeInputs(t)
	var stdout bytes.Buffer
	require.NoError(t, runInspect([]string{in}, &stdout))

	out := stdout.String()
	assert.Contains(t, out, "photo.png")
	assert.Contains(t, out, "160x90")
	assert.Contains(t, out, "broken.jpg")
}

type brokenInput struct{}

func (brokenInput) Read([]byte) (int, error) {
	return 0, errors.New("no terminal")
}

func TestProgressKeepsDrainingAfterDisplayFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const total = 500
	display := startProgress(ctx, cancel, zaptest.NewLogger(t), total, tea.WithInput(brokenInput{}), tea.WithOutput(io.Discard))
	observe := display.observer(ctx)

	sent := make(chan struct{})
	go func() {
		defer close(sent)
		for i := 0; i < total; i++ {
			observe(processor.ItemEvent{Index: i, Outcome: processor.OutcomeSucceeded})
		}
	}()

	select {
	case <-sent:
	case <-time.After(10 * time.Second):
		t.Fatal("observer blocked after the display stopped")
	}

	assert.Error(t, display.finish())
	assert.NoError(t, ctx.Err(), "a failed display must not cancel the batch")
}
