package blogcontent

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wallapi/internal/storage"
	"wallapi/internal/storage/mocks"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake-image-data")

func newLocal(t *testing.T) (storage.Storage, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := storage.NewLocal(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)
	return s, dir
}

func TestNormalizeWhitespace(t *testing.T) {
	in := "a&nbsp;b&#160;c&#xA0;d&NBSP;e\u00a0f"
	assert.Equal(t, "a b c d e f", NormalizeWhitespace(in))
	assert.Equal(t, "<p>plain</p>", NormalizeWhitespace("<p>plain</p>"))
}

func TestProcess_ExternalizesInlineImages(t *testing.T) {
	store, dir := newLocal(t)
	p := NewProcessor(store, 1<<20, nil)
	ctx := context.Background()

	b64 := base64.StdEncoding.EncodeToString(pngBytes)
	html := `<p>Salon&nbsp;örneği</p><img src="data:image/png;base64,` + b64 + `" alt="a">` +
		`<img class="x" src='data:image/jpeg;base64,` + b64 + `'>`

	res, err := p.Process(ctx, "42", html)
	require.NoError(t, err)

	assert.NotContains(t, res.HTML, "data:image")
	assert.Contains(t, res.HTML, "<p>Salon örneği</p>")
	assert.Contains(t, res.HTML, `src="http://localhost:8080/uploads/blogsWall/42/content_`)
	assert.Contains(t, res.HTML, `src='http://localhost:8080/uploads/blogsWall/42/content_`)
	require.Len(t, res.Written, 2)
	assert.True(t, strings.HasSuffix(res.Written[0], ".png"))
	assert.True(t, strings.HasSuffix(res.Written[1], ".jpg"))

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(res.Written[0])))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestProcess_IdenticalImagesShareOneFile(t *testing.T) {
	store, _ := newLocal(t)
	p := NewProcessor(store, 0, nil)
	ctx := context.Background()

	b64 := base64.StdEncoding.EncodeToString(pngBytes)
	img := `<img src="data:image/png;base64,` + b64 + `">`

	first, err := p.Process(ctx, "7", img+img)
	require.NoError(t, err)
	assert.Len(t, first.Written, 1)

	// Saving the same inline image again maps to the existing file.
	second, err := p.Process(ctx, "7", first.HTML+img)
	require.NoError(t, err)
	assert.Empty(t, second.Written)
	assert.Equal(t, 3, strings.Count(second.HTML, "content_"))
}

func TestProcess_KeepsUnreferencedFiles(t *testing.T) {
	store, dir := newLocal(t)
	p := NewProcessor(store, 0, nil)
	ctx := context.Background()

	b64 := base64.StdEncoding.EncodeToString(pngBytes)
	res, err := p.Process(ctx, "9", `<img src="data:image/png;base64,`+b64+`">`)
	require.NoError(t, err)
	require.Len(t, res.Written, 1)

	_, err = p.Process(ctx, "9", "<p>no images any more</p>")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(res.Written[0])))
	assert.NoError(t, err)
}

func TestCleanup_RemovesOrphans(t *testing.T) {
	store, dir := newLocal(t)
	p := NewProcessor(store, 0, nil)
	ctx := context.Background()

	b64 := base64.StdEncoding.EncodeToString(pngBytes)
	res, err := p.Process(ctx, "9", `<img src="data:image/png;base64,`+b64+`">`)
	require.NoError(t, err)
	require.Len(t, res.Written, 1)

	// A cover image in the same folder is not a content file and survives.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blogsWall", "9", "cover.jpg"), []byte("c"), 0o644))

	removed, err := p.Cleanup(ctx, "9", res.HTML)
	require.NoError(t, err)
	assert.Empty(t, removed)

	removed, err = p.Cleanup(ctx, "9", "<p>no images any more</p>")
	require.NoError(t, err)
	assert.Equal(t, res.Written, removed)

	entries, err := os.ReadDir(filepath.Join(dir, "blogsWall", "9"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cover.jpg", entries[0].Name())
}

func TestCleanup_NoFolderYet(t *testing.T) {
	store, _ := newLocal(t)
	p := NewProcessor(store, 0, nil)

	removed, err := p.Cleanup(context.Background(), "new", "<p>text only</p>")
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestProcess_LeavesBadPayloadsUntouched(t *testing.T) {
	store, _ := newLocal(t)
	p := NewProcessor(store, 8, nil)

	big := base64.StdEncoding.EncodeToString([]byte("more than eight bytes"))
	html := `<img src="data:image/png;base64,!!!not-base64!!!">` +
		`<img src="data:image/png;base64,` + big + `">` +
		`<img src="data:image/x<y;base64,AAAA">`

	res, err := p.Process(context.Background(), "3", html)
	require.NoError(t, err)
	assert.Equal(t, html, res.HTML)
	assert.Empty(t, res.Written)
}

func TestProcess_NoFolderYet(t *testing.T) {
	store, _ := newLocal(t)
	p := NewProcessor(store, 0, nil)

	res, err := p.Process(context.Background(), "new", "<p>text only</p>")
	require.NoError(t, err)
	assert.Equal(t, "<p>text only</p>", res.HTML)
	assert.Empty(t, res.Written)
}

func TestProcess_InvalidID(t *testing.T) {
	p := NewProcessor(nil, 0, nil)
	for _, id := range []string{"", "..", "a/b", `a\b`} {
		_, err := p.Process(context.Background(), id, "")
		assert.ErrorIs(t, err, ErrInvalidBlogID, id)
		_, err = p.Cleanup(context.Background(), id, "")
		assert.ErrorIs(t, err, ErrInvalidBlogID, id)
		assert.ErrorIs(t, p.Purge(context.Background(), id), ErrInvalidBlogID, id)
	}
}

func TestProcess_StorageFailure(t *testing.T) {
	st := new(mocks.MockStorage)
	st.On("Stat", mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, storage.ErrNotExist)
	st.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, errors.New("disk full"))

	p := NewProcessor(st, 0, nil)
	b64 := base64.StdEncoding.EncodeToString(pngBytes)

	_, err := p.Process(context.Background(), "1", `<img src="data:image/png;base64,`+b64+`">`)
	assert.ErrorContains(t, err, "disk full")
	st.AssertExpectations(t)
}

func TestPurge(t *testing.T) {
	store, dir := newLocal(t)
	p := NewProcessor(store, 0, nil)
	ctx := context.Background()

	b64 := base64.StdEncoding.EncodeToString(pngBytes)
	_, err := p.Process(ctx, "5", `<img src="data:image/gif;base64,`+b64+`">`)
	require.NoError(t, err)

	require.NoError(t, p.Purge(ctx, "5"))
	_, err = os.Stat(filepath.Join(dir, "blogsWall", "5"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, p.Purge(ctx, "never-existed"))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "jpg", extension("JPEG"))
	assert.Equal(t, "svg", extension("svg+xml"))
	assert.Equal(t, "webp", extension("webp"))
	assert.Equal(t, "ico", extension("x-icon"))
	assert.Equal(t, "", extension("x.y"))
}
