package collect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resizer/internal/fixture"
)

func write(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestPathsWalksDirectories(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.png"), fixture.PNG(4, 4))
	write(t, filepath.Join(dir, "README.md"), []byte("# docs"))
	write(t, filepath.Join(dir, "nested", "b.jpg"), fixture.JPEG(4, 4))
	write(t, filepath.Join(dir, "resized", "a_resized.jpg"), fixture.JPEG(2, 2))

	sources, err := Paths([]string{dir}, filepath.Join(dir, "resized"))
	require.NoError(t, err)

	names := []string{}
	for _, s := range sources {
		names = append(names, s.OriginalName)
		assert.NotEmpty(t, s.ID)
		assert.NotEmpty(t, s.Bytes)
	}
	assert.Equal(t, []string{"a.png", "nested_b.jpg"}, names)
}

func TestPathsWalksEveryDecodableKind(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.bmp"), fixture.BMP(4, 4))
	write(t, filepath.Join(dir, "b.tiff"), fixture.TIFF(4, 4))
	write(t, filepath.Join(dir, "c.webp"), fixture.WEBP(4, 4))

	sources, err := Paths([]string{dir}, "")
	require.NoError(t, err)

	names := []string{}
	for _, s := range sources {
		names = append(names, s.OriginalName)
	}
	assert.Equal(t, []string{"a.bmp", "b.tiff", "c.webp"}, names)
}

func TestPathsAdmitsExplicitFiles(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.txt")
	img := filepath.Join(dir, "x.gif")
	write(t, notes, []byte("text"))
	write(t, img, fixture.GIF(3, 3))

	sources, err := Paths([]string{img, notes}, "")
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "x.gif", sources[0].OriginalName)
	assert.Equal(t, "notes.txt", sources[1].OriginalName)
	assert.NotEqual(t, sources[0].ID, sources[1].ID)
}

func TestPathsMissing(t *testing.T) {
	_, err := Paths([]string{filepath.Join(t.TempDir(), "nope")}, "")
	assert.Error(t, err)
}

func TestIsWithin(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "data", "in")
	assert.True(t, isWithin(root, root))
	assert.True(t, isWithin(filepath.Join(root, "out"), root))
	assert.False(t, isWithin(filepath.Join(string(filepath.Separator), "data"), root))
	assert.False(t, isWithin(filepath.Join(string(filepath.Separator), "data", "inbox"), root))
}
