// Package output delivers batch results to the local filesystem.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"resizer/internal/archive"
	"resizer/internal/processor"
)

// WriteAll writes each image into dir under its name, flattened and
// disambiguated the same way archive entries are. It returns the written paths in
// input order.
func WriteAll(dir string, images []processor.ProcessedImage) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	names := make([]string, len(images))
	for i, img := range images {
		names[i] = img.Name
	}
	names = archive.SafeNames(names)

	paths := make([]string, 0, len(images))
	for i, img := range images {
		if img.Bytes == nil {
			return paths, fmt.Errorf("write %s: image buffer already released", img.Name)
		}
		dest := filepath.Join(dir, names[i])
		if err := WriteFile(dest, img.Bytes); err != nil {
			return paths, err
		}
		paths = append(paths, dest)
	}
	return paths, nil
}

// WriteFile replaces dest with data through a temporary file in the same
// directory.
func WriteFile(dest string, data []byte) error {
	destDir := filepath.Dir(dest)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(destDir, "resizer-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())

	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return replaceFile(tmpFile.Name(), dest)
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}
