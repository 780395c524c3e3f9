package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0600))
	return path
}

func TestNew(t *testing.T) {
	loader := New()
	require.NotNil(t, loader)
	assert.IsType(t, &Loader{}, loader)
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".txt"}, New().Extensions())
}

func TestLoad_Success(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("This is plain text content.\nSecond line."))

	sections, err := New().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, 1, sections[0].Index)
	assert.Equal(t, "This is plain text content.\nSecond line.", sections[0].Text)
}

func TestLoad_StripsBOM(t *testing.T) {
	path := writeFile(t, "bom.txt", append([]byte{0xEF, 0xBB, 0xBF}, []byte("héllo")...))

	sections, err := New().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "héllo", sections[0].Text)
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty.txt", nil)

	sections, err := New().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Empty(t, sections[0].Text)
}

func TestLoad_InvalidUTF8(t *testing.T) {
	path := writeFile(t, "binary.txt", []byte{0xff, 0xfe, 0x00, 0x81})

	_, err := New().Load(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrLoad)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, domain.ErrLoad)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Loader = (*Loader)(nil)
}
