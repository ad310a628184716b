package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"time"
)

// localStorage keeps objects as plain files below root. Directories are real
// directories, so the uploads tree can also be served statically.
type localStorage struct {
	root    string
	baseURL string
}

// NewLocal creates a disk-backed Storage rooted at dir. Public URLs are
// built by prefixing keys with baseURL.
func NewLocal(dir, baseURL string) (Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &localStorage{root: abs, baseURL: baseURL}, nil
}

func (l *localStorage) resolve(key string) (string, string, error) {
	k, err := CleanKey(key)
	if err != nil {
		return "", "", err
	}
	return k, filepath.Join(l.root, filepath.FromSlash(k)), nil
}

func (l *localStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	k, p, err := l.resolve(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	if k == "" {
		return ObjectInfo{}, ErrInvalidKey
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return ObjectInfo{}, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return ObjectInfo{}, err
	}
	n, err := io.Copy(tmp, contextReader{ctx: ctx, r: r})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), p)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return ObjectInfo{}, err
	}

	return ObjectInfo{
		Key:          k,
		Size:         n,
		ContentType:  contentType(k, opt.ContentType),
		LastModified: time.Now(),
		Metadata:     opt.Metadata,
	}, nil
}

func (l *localStorage) Get(_ context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	k, p, err := l.resolve(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, ObjectInfo{}, mapFSError(err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, mapFSError(err)
	}
	if st.IsDir() {
		f.Close()
		return nil, ObjectInfo{}, ErrNotExist
	}
	return f, fileInfo(k, st), nil
}

func (l *localStorage) Stat(_ context.Context, key string) (ObjectInfo, error) {
	k, p, err := l.resolve(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	st, err := os.Stat(p)
	if err != nil {
		return ObjectInfo{}, mapFSError(err)
	}
	return fileInfo(k, st), nil
}

func (l *localStorage) Delete(_ context.Context, key string) error {
	k, p, err := l.resolve(key)
	if err != nil {
		return err
	}
	if k == "" {
		return ErrInvalidKey
	}
	return mapFSError(os.Remove(p))
}

func (l *localStorage) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	k, p, err := l.resolve(prefix)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(p)
	if err != nil {
		return nil, mapFSError(err)
	}

	out := make([]ObjectInfo, 0, len(entries))
	for _, e := range entries {
		if e.Name()[0] == '.' {
			continue
		}
		st, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, fileInfo(path.Join(k, e.Name()), st))
	}
	return out, nil
}

func (l *localStorage) MakeDir(_ context.Context, key string) error {
	_, p, err := l.resolve(key)
	if err != nil {
		return err
	}
	return os.MkdirAll(p, 0o755)
}

func (l *localStorage) DeletePrefix(_ context.Context, prefix string) error {
	k, p, err := l.resolve(prefix)
	if err != nil {
		return err
	}
	if k == "" {
		return ErrInvalidKey
	}
	return os.RemoveAll(p)
}

func (l *localStorage) URL(key string) string {
	return joinURL(l.baseURL, key)
}

func fileInfo(key string, st fs.FileInfo) ObjectInfo {
	info := ObjectInfo{
		Key:          key,
		LastModified: st.ModTime(),
		IsDir:        st.IsDir(),
	}
	if !st.IsDir() {
		info.Size = st.Size()
		info.ContentType = contentType(key, "")
	}
	return info
}

func contentType(key, given string) string {
	if given != "" {
		return given
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func mapFSError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}
	return err
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
