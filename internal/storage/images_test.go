package storage

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes is a PNG signature plus enough of an IHDR chunk for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func newFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["image"][0]
}

func newTestStore(t *testing.T) *ImageStore {
	t.Helper()
	store, err := NewImageStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return store
}

func TestImageStore_Save(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.Save(newFileHeader(t, "villa.PNG", "image/png", pngBytes))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, URLPrefix))
	assert.Regexp(t, `^/uploads/\d+-\d{9}\.png$`, ref)

	data, err := os.ReadFile(filepath.Join(store.Dir(), filepath.Base(ref)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestImageStore_Save_UniqueNames(t *testing.T) {
	store := newTestStore(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		ref, err := store.Save(newFileHeader(t, "a.png", "image/png", pngBytes))
		require.NoError(t, err)
		assert.False(t, seen[ref], "duplicate name %s", ref)
		seen[ref] = true
	}
}

func TestImageStore_Validate(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name        string
		filename    string
		contentType string
		content     []byte
		wantErr     error
	}{
		{"valid png", "a.png", "image/png", pngBytes, nil},
		{"disallowed extension", "a.exe", "image/png", pngBytes, ErrInvalidFileType},
		{"pdf extension", "a.pdf", "application/pdf", []byte("%PDF-1.4"), ErrInvalidFileType},
		{"declared type not an image", "a.png", "text/plain", pngBytes, ErrInvalidFileType},
		{"content is not an image", "a.png", "image/png", []byte("just some text pretending"), ErrInvalidFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Validate(newFileHeader(t, tt.filename, tt.contentType, tt.content))
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestImageStore_Save_TooLarge(t *testing.T) {
	store := newTestStore(t)
	store.maxSize = 4

	_, err := store.Save(newFileHeader(t, "a.png", "image/png", pngBytes))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads must not be written")
}

func TestImageStore_Remove(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.Save(newFileHeader(t, "a.png", "image/png", pngBytes))
	require.NoError(t, err)

	require.NoError(t, store.Remove(ref))
	_, err = os.Stat(filepath.Join(store.Dir(), filepath.Base(ref)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Remove(ref), "removing a missing file is not an error")
	assert.NoError(t, store.Remove("https://images.unsplash.com/photo.jpg"))
}

func TestImageStore_Remove_StaysInsideDir(t *testing.T) {
	root := t.TempDir()
	store, err := NewImageStore(filepath.Join(root, "uploads"))
	require.NoError(t, err)

	outside := filepath.Join(root, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	require.NoError(t, store.Remove("/uploads/../secret.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err, "files outside the upload dir must survive")
}

func TestIsLocal(t *testing.T) {
	assert.True(t, IsLocal("/uploads/1-2.png"))
	assert.False(t, IsLocal("https://example.com/uploads/1-2.png"))
	assert.False(t, IsLocal(""))
}
