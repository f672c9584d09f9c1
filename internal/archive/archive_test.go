package archive

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resizer/internal/codec"
	"resizer/internal/fixture"
	"resizer/internal/processor"
)

func images(names ...string) []processor.ProcessedImage {
	out := make([]processor.ProcessedImage, len(names))
	for i, n := range names {
		data := []byte("payload-" + n + "-" + string(rune('a'+i)))
		out[i] = processor.ProcessedImage{Name: n, Bytes: data, ByteSize: len(data), SourceID: n}
	}
	return out
}

func readZip(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = body
	}
	return out
}

func readTar(t *testing.T, r io.Reader) map[string][]byte {
	t.Helper()
	tr := tar.NewReader(r)
	out := map[string][]byte{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		body, err := io.ReadAll(tr)
		require.NoError(t, err)
		out[hdr.Name] = body
	}
}

func TestPackZipKeepsCollidingEntries(t *testing.T) {
	imgs := images("photo_resized.jpg", "photo_resized.jpg", "other_resized.jpg", "photo_resized.jpg")

	arc, err := Pack(imgs, Options{})
	require.NoError(t, err)
	assert.Equal(t, "resized-images.zip", arc.Name)
	assert.Equal(t, FormatZip, arc.Format)
	assert.Equal(t, []string{"photo_resized.jpg", "photo_resized_1.jpg", "other_resized.jpg", "photo_resized_2.jpg"}, arc.Entries)

	entries := readZip(t, arc.Bytes)
	require.Len(t, entries, 4)
	assert.Equal(t, imgs[0].Bytes, entries["photo_resized.jpg"])
	assert.Equal(t, imgs[1].Bytes, entries["photo_resized_1.jpg"])
	assert.Equal(t, imgs[2].Bytes, entries["other_resized.jpg"])
	assert.Equal(t, imgs[3].Bytes, entries["photo_resized_2.jpg"])
}

func TestPackFlattensEntryNames(t *testing.T) {
	imgs := images("../x.jpg", "/abs/dir/x.jpg", `..\evil\y.png`, "..")

	for _, format := range []Format{FormatZip, FormatTarZst} {
		arc, err := Pack(imgs, Options{Format: format})
		require.NoError(t, err)
		assert.Equal(t, []string{"x.jpg", "x_1.jpg", "y.png", "image"}, arc.Entries)
		for _, name := range arc.Entries {
			assert.NotContains(t, name, "/")
			assert.NotContains(t, name, "..")
		}
	}

	entries := readZip(t, mustPack(t, imgs, FormatZip).Bytes)
	assert.Equal(t, imgs[0].Bytes, entries["x.jpg"])
	assert.Equal(t, imgs[1].Bytes, entries["x_1.jpg"])
}

func mustPack(t *testing.T, imgs []processor.ProcessedImage, format Format) *Archive {
	t.Helper()
	arc, err := Pack(imgs, Options{Format: format})
	require.NoError(t, err)
	return arc
}

func TestEntryName(t *testing.T) {
	assert.Equal(t, "a_resized.jpg", EntryName("a_resized.jpg"))
	assert.Equal(t, "x.jpg", EntryName("../../x.jpg"))
	assert.Equal(t, "image", EntryName(""))
	assert.Equal(t, "image", EntryName("/"))
	assert.Equal(t, "image", EntryName(".."))
}

func TestPackTarFormats(t *testing.T) {
	imgs := images("a_resized.png", "a_resized.png")

	arc, err := Pack(imgs, Options{Format: FormatTarZst})
	require.NoError(t, err)
	assert.Equal(t, "resized-images.tar.zst", arc.Name)
	dec, err := zstd.NewReader(bytes.NewReader(arc.Bytes))
	require.NoError(t, err)
	entries := readTar(t, dec)
	dec.Close()
	assert.Equal(t, imgs[0].Bytes, entries["a_resized.png"])
	assert.Equal(t, imgs[1].Bytes, entries["a_resized_1.png"])

	arc, err = Pack(imgs, Options{Format: FormatTarLZ4})
	require.NoError(t, err)
	assert.Equal(t, "resized-images.tar.lz4", arc.Name)
	entries = readTar(t, lz4.NewReader(bytes.NewReader(arc.Bytes)))
	assert.Len(t, entries, 2)
	assert.Equal(t, imgs[1].Bytes, entries["a_resized_1.png"])
}

func TestPackIsDeterministic(t *testing.T) {
	imgs := images("x.jpg", "y.jpg")
	for _, f := range []Format{FormatZip, FormatTarZst, FormatTarLZ4} {
		a, err := Pack(imgs, Options{Format: f})
		require.NoError(t, err)
		b, err := Pack(imgs, Options{Format: f})
		require.NoError(t, err)
		assert.Equal(t, a.Bytes, b.Bytes, "format %s", f)
	}
}

func TestPackTimestamps(t *testing.T) {
	when := time.Date(2024, time.March, 3, 10, 30, 0, 0, time.UTC)
	arc, err := Pack(images("a.jpg"), Options{ModTime: when})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(arc.Bytes), int64(len(arc.Bytes)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.True(t, zr.File[0].Modified.Equal(when), "modified %v", zr.File[0].Modified)
}

func TestPackDoesNotTouchInputs(t *testing.T) {
	imgs := images("a.jpg", "a.jpg")
	before := append([]byte{}, imgs[1].Bytes...)

	_, err := Pack(imgs, Options{})
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", imgs[1].Name)
	assert.Equal(t, before, imgs[1].Bytes)
}

func TestPackErrors(t *testing.T) {
	imgs := images("a.jpg")
	imgs[0].Release()
	_, err := Pack(imgs, Options{})
	assert.Error(t, err)

	_, err = Pack(images("a.jpg"), Options{Format: "rar"})
	assert.Error(t, err)
}

func TestPackEmpty(t *testing.T) {
	arc, err := Pack(nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, readZip(t, arc.Bytes))
}

func TestPackPipelineOutput(t *testing.T) {
	sources := []processor.SourceImage{
		processor.NewSourceImage("a.png", fixture.PNG(20, 20)),
		processor.NewSourceImage("a.jpg", fixture.JPEG(20, 20)),
	}
	res, err := processor.Run(context.Background(), sources, processor.Options{
		Resize: processor.ResizeOptions{Width: 10, Height: 10, Format: codec.FormatPNG},
	})
	require.NoError(t, err)

	arc, err := Pack(res.Successes, Options{})
	require.NoError(t, err)
	entries := readZip(t, arc.Bytes)
	assert.Contains(t, entries, "a_resized.png")
	assert.Contains(t, entries, "a_resized_1.png")

	arc.Release()
	assert.Nil(t, arc.Bytes)
}

func TestUniqueNames(t *testing.T) {
	assert.Equal(t,
		[]string{"a.jpg", "a_2.jpg", "a_1.jpg"},
		UniqueNames([]string{"a.jpg", "a.jpg", "a_1.jpg"}),
	)
	assert.Equal(t,
		[]string{"noext", "noext_1", ".hidden", ".hidden_1"},
		UniqueNames([]string{"noext", "noext", ".hidden", ".hidden"}),
	)
	assert.Empty(t, UniqueNames(nil))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatZip, "ZIP": FormatZip, ".tar.zst": FormatTarZst, "lz4": FormatTarLZ4} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("7z")
	assert.Error(t, err)
}
