package utils

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes is a minimal valid PNG signature plus padding, enough for
// content-type sniffing to see image/png.
var pngBytes = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 64)...)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, header, err := req.FormFile("image")
	require.NoError(t, err)
	return header
}

func TestLocalStoreSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	url, err := store.SaveImage(fileHeader(t, "poster.png", pngBytes))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/"), url)
	assert.Equal(t, ".png", filepath.Ext(url))

	saved := filepath.Join(dir, filepath.Base(url))
	_, err = os.Stat(saved)
	assert.NoError(t, err)

	require.NoError(t, store.DeleteImage(url))
	_, err = os.Stat(saved)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStoreRejectsNonImage(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.SaveImage(fileHeader(t, "notes.txt", []byte("plain text, not an image")))
	assert.Error(t, err)
}

func TestLocalStoreRejectsOversizedFile(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	big := append([]byte{}, pngBytes...)
	big = append(big, make([]byte, 5<<20)...)
	_, err = store.SaveImage(fileHeader(t, "huge.png", big))
	assert.Error(t, err)
}
