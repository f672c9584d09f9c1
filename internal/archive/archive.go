// Package archive bundles processed images into a single downloadable file.
package archive

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"resizer/internal/processor"
)

// Format selects the container.
type Format string

const (
	FormatZip    Format = "zip"
	FormatTarZst Format = "tar.zst"
	FormatTarLZ4 Format = "tar.lz4"
)

// BaseName is the stem of the suggested archive filename.
const BaseName = "resized-images"

// epoch stamps entries when no ModTime is given so output is reproducible.
var epoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParseFormat accepts "zip", "tar.zst"/"zst" and "tar.lz4"/"lz4".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "zip":
		return FormatZip, nil
	case "tar.zst", "zst", "tzst":
		return FormatTarZst, nil
	case "tar.lz4", "lz4":
		return FormatTarLZ4, nil
	default:
		return "", fmt.Errorf("unsupported archive format %q", s)
	}
}

// DefaultName returns the suggested filename for format, for example
// "resized-images.zip".
func DefaultName(format Format) string {
	if format == "" {
		format = FormatZip
	}
	return BaseName + "." + string(format)
}

// Options configures Pack.
type Options struct {
	Format  Format
	ModTime time.Time
}

// Archive is a packed bundle held in memory.
type Archive struct {
	Name    string
	Format  Format
	Bytes   []byte
	Entries []string
}

// Release drops the archive buffer.
func (a *Archive) Release() {
	a.Bytes = nil
}

type entry struct {
	name string
	data []byte
}

// Pack writes every image into one archive under its Name flattened with
// EntryName. Repeated names are then disambiguated with UniqueNames. Images
// are only read.
func Pack(images []processor.ProcessedImage, opts Options) (*Archive, error) {
	format := opts.Format
	if format == "" {
		format = FormatZip
	}
	mod := opts.ModTime
	if mod.IsZero() {
		mod = epoch
	}

	names := make([]string, len(images))
	for i, img := range images {
		if img.Bytes == nil {
			return nil, fmt.Errorf("pack %s: image buffer already released", img.Name)
		}
		names[i] = img.Name
	}
	names = SafeNames(names)

	entries := make([]entry, len(images))
	for i, img := range images {
		entries[i] = entry{name: names[i], data: img.Bytes}
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case FormatZip:
		err = writeZip(&buf, entries, mod)
	case FormatTarZst:
		err = writeTarZst(&buf, entries, mod)
	case FormatTarLZ4:
		err = writeTarLZ4(&buf, entries, mod)
	default:
		return nil, fmt.Errorf("unsupported archive format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", format, err)
	}

	return &Archive{
		Name:    DefaultName(format),
		Format:  format,
		Bytes:   buf.Bytes(),
		Entries: names,
	}, nil
}

func writeZip(w io.Writer, entries []entry, mod time.Time) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: mod,
		})
		if err != nil {
			_ = zw.Close()
			return err
		}
		if _, err := fw.Write(e.data); err != nil {
			_ = zw.Close()
			return err
		}
	}
	return zw.Close()
}

func writeTar(w io.Writer, entries []entry, mod time.Time) error {
	tw := tar.NewWriter(w)
	for _, e := range entries {
		hdr := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     e.name,
			Mode:     0o644,
			Size:     int64(len(e.data)),
			ModTime:  mod,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if _, err := tw.Write(e.data); err != nil {
			return err
		}
	}
	return tw.Close()
}

func writeTarZst(w io.Writer, entries []entry, mod time.Time) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return err
	}
	if err := writeTar(enc, entries, mod); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func writeTarLZ4(w io.Writer, entries []entry, mod time.Time) error {
	lw := lz4.NewWriter(w)
	if err := writeTar(lw, entries, mod); err != nil {
		_ = lw.Close()
		return err
	}
	return lw.Close()
}
