package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutAndDelete(t *testing.T) {
	root := t.TempDir()
	d := NewLocal(root, "http://localhost:8080/uploads/")
	ctx := context.Background()

	require.NoError(t, d.Put(ctx, "resumes/a.pdf", strings.NewReader("%PDF"), "application/pdf"))
	b, err := os.ReadFile(filepath.Join(root, "resumes", "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(b))
	assert.Equal(t, "http://localhost:8080/uploads/resumes/a.pdf", d.URL("resumes/a.pdf"))

	require.NoError(t, d.Delete(ctx, "resumes/a.pdf"))
	_, err = os.Stat(filepath.Join(root, "resumes", "a.pdf"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, d.Delete(ctx, "resumes/a.pdf"))
}

func TestLocalStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	d := NewLocal(root, "")

	require.NoError(t, d.Put(context.Background(), "../../escape.txt", strings.NewReader("x"), ""))
	_, err := os.Stat(filepath.Join(root, "escape.txt"))
	assert.NoError(t, err)

	assert.Error(t, d.Put(context.Background(), "", strings.NewReader("x"), ""))
}

func TestDocumentPath(t *testing.T) {
	p, ct, err := DocumentPath("resumes", "CV.PDF")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "resumes/"))
	assert.True(t, strings.HasSuffix(p, ".pdf"))
	assert.Equal(t, "application/pdf", ct)

	_, _, err = DocumentPath("resumes", "cv.exe")
	assert.Error(t, err)
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), Options{Driver: "ftp"})
	assert.Error(t, err)

	d, err := New(context.Background(), Options{LocalRoot: t.TempDir(), PublicBaseURL: "http://api.test/"})
	require.NoError(t, err)
	assert.Equal(t, "http://api.test/uploads/x.pdf", d.URL("x.pdf"))
}
