package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wallapi/internal/storage"
	storeMocks "wallapi/internal/storage/mocks"
)

func newFileService(t *testing.T, maxBytes int64) (FileService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocal(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)
	return NewFileService(store, maxBytes, nil), dir
}

func TestFileService_ListSortsDirectoriesFirst(t *testing.T) {
	ctx := context.Background()
	svc, dir := newFileService(t, 0)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "urunler"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blogsWall"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zeytin.png"), []byte("z"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "çiçek.png"), []byte("c"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ahşap.jpg"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitkeep"), nil, 0o644))

	entries, err := svc.List(ctx, "/")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"blogsWall", "urunler", "ahşap.jpg", "çiçek.png", "zeytin.png"}, names)
	assert.True(t, entries[0].IsDir)
	assert.Empty(t, entries[0].URL)
	assert.Equal(t, "http://localhost:8080/uploads/zeytin.png", entries[4].URL)
}

func TestFileService_ListErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newFileService(t, 0)

	_, err := svc.List(ctx, "../etc")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = svc.List(ctx, "yok")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileService_Mkdir(t *testing.T) {
	ctx := context.Background()
	svc, dir := newFileService(t, 0)

	e, err := svc.Mkdir(ctx, "/", "Yeni Klasör")
	require.NoError(t, err)
	assert.Equal(t, "yeni-klasor", e.Path)
	st, err := os.Stat(filepath.Join(dir, "yeni-klasor"))
	require.NoError(t, err)
	assert.True(t, st.IsDir())

	_, err = svc.Mkdir(ctx, "", "yeni-klasor")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Mkdir(ctx, "", "..")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFileService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, dir := newFileService(t, 0)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "kampanya", "alt"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kampanya", "alt", "a.png"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.svg"), []byte("<svg/>"), 0o644))

	assert.ErrorIs(t, svc.Delete(ctx, "/"), ErrRootUndeletable)
	assert.ErrorIs(t, svc.Delete(ctx, ""), ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, "kampanya/../../x"), ErrInvalidPath)
	assert.ErrorIs(t, svc.Delete(ctx, "yok.png"), ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "kampanya"))
	require.NoError(t, svc.Delete(ctx, "/logo.svg"))

	left, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestFileService_Upload(t *testing.T) {
	ctx := context.Background()
	svc, dir := newFileService(t, 16)

	e, err := svc.Upload(ctx, "urunler", `C:\fakepath\Salon Duvarı.PNG`, 5, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^urunler/salon-duvari-[0-9a-f]{8}\.png$`), e.Path)
	assert.Equal(t, "http://localhost:8080/uploads/"+e.Path, e.URL)
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(e.Path)))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = svc.Upload(ctx, "", "script.exe", 5, strings.NewReader("hello"))
	assert.ErrorIs(t, err, ErrFileType)

	_, err = svc.Upload(ctx, "", "big.jpg", 17, strings.NewReader(strings.Repeat("x", 17)))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = svc.Upload(ctx, "../", "a.jpg", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestFileService_UploadStorageError(t *testing.T) {
	ctx := context.Background()
	store := new(storeMocks.MockStorage)
	svc := NewFileService(store, 0, nil)
	store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, errors.New("bucket gone"))

	_, err := svc.Upload(ctx, "", "a.webp", 1, strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload to storage: bucket gone")
}
