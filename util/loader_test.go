package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detect/images"
)

func TestLoadDirectoryImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "c.webp", "notes.txt", "d.gif"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

	files, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, filepath.Join(dir, "a.JPG"), files[0].Path)
	assert.Equal(t, images.FormatJPEG, files[0].Format)
	assert.Equal(t, []byte("a.JPG"), files[0].Data)
	assert.Equal(t, images.FormatPNG, files[1].Format)
	assert.Equal(t, images.FormatWebP, files[2].Format)
}

func TestLoadDirectoryMissing(t *testing.T) {
	_, err := LoadDirectoryImageFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoadImageFileUnsupported(t *testing.T) {
	_, err := LoadImageFile("clip.bmp")
	assert.ErrorIs(t, err, images.ErrUnsupportedFormat)
}
