package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"wallapi/internal/model"
	"wallapi/internal/slug"
	"wallapi/internal/storage"
)

// FileService manages the uploads tree of the admin file manager.
// Paths are relative to the uploads root; "" and "/" are the root.
type FileService interface {
	// List returns directories first, then files, each sorted by name.
	List(ctx context.Context, dir string) ([]model.FileEntry, error)
	Mkdir(ctx context.Context, parent, name string) (*model.FileEntry, error)
	// Delete removes a file or a directory with its contents.
	Delete(ctx context.Context, p string) error
	// Upload stores r under dir with a sanitized, unique file name.
	Upload(ctx context.Context, dir, filename string, size int64, r io.Reader) (*model.FileEntry, error)
}

// allowedUploads maps accepted extensions to the stored content type.
var allowedUploads = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".avif": "image/avif",
	".ico":  "image/x-icon",
	".pdf":  "application/pdf",
}

type fileService struct {
	store    storage.Storage
	maxBytes int64
	log      *zap.Logger
}

func NewFileService(store storage.Storage, maxBytes int64, log *zap.Logger) FileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &fileService{store: store, maxBytes: maxBytes, log: log}
}

func cleanPath(p string) (string, error) {
	k, err := storage.CleanKey(p)
	if err != nil {
		return "", ErrInvalidPath
	}
	return k, nil
}

func (s *fileService) entry(o storage.ObjectInfo) model.FileEntry {
	e := model.FileEntry{
		Name:       o.Name(),
		Path:       o.Key,
		IsDir:      o.IsDir,
		Size:       o.Size,
		ModifiedAt: o.LastModified,
	}
	if !o.IsDir {
		e.URL = s.store.URL(o.Key)
	}
	return e
}

func (s *fileService) List(ctx context.Context, dir string) ([]model.FileEntry, error) {
	key, err := cleanPath(dir)
	if err != nil {
		return nil, err
	}
	objs, err := s.store.List(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			if key == "" {
				return []model.FileEntry{}, nil
			}
			return nil, ErrNotFound
		}
		return nil, err
	}

	entries := make([]model.FileEntry, 0, len(objs))
	for _, o := range objs {
		entries = append(entries, s.entry(o))
	}
	col := collate.New(language.Turkish, collate.IgnoreCase)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return col.CompareString(entries[i].Name, entries[j].Name) < 0
	})
	return entries, nil
}

func (s *fileService) Mkdir(ctx context.Context, parent, name string) (*model.FileEntry, error) {
	base, err := cleanPath(parent)
	if err != nil {
		return nil, err
	}
	dirName := sanitizeName(name)
	if dirName == "" {
		return nil, invalid("name", ReasonInvalid)
	}
	key := path.Join(base, dirName)
	if _, err := s.store.Stat(ctx, key); err == nil {
		return nil, fmt.Errorf("%w: %s exists", ErrConflict, key)
	} else if !errors.Is(err, storage.ErrNotExist) {
		return nil, err
	}
	if err := s.store.MakeDir(ctx, key); err != nil {
		return nil, err
	}
	s.log.Info("file_mkdir", zap.String("path", key))
	return &model.FileEntry{Name: dirName, Path: key, IsDir: true}, nil
}

func (s *fileService) Delete(ctx context.Context, p string) error {
	key, err := cleanPath(p)
	if err != nil {
		return err
	}
	if key == "" {
		return ErrRootUndeletable
	}
	info, err := s.store.Stat(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	if info.IsDir {
		err = s.store.DeletePrefix(ctx, key)
	} else {
		err = s.store.Delete(ctx, key)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	s.log.Info("file_delete", zap.String("path", key), zap.Bool("dir", info.IsDir))
	return nil
}

func (s *fileService) Upload(ctx context.Context, dir, filename string, size int64, r io.Reader) (*model.FileEntry, error) {
	base, err := cleanPath(dir)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := allowedUploads[ext]
	if !ok {
		return nil, ErrFileType
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	stem := sanitizeName(strings.TrimSuffix(path.Base(strings.ReplaceAll(filename, `\`, "/")), path.Ext(filename)))
	if stem == "" {
		stem = "file"
	}
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return nil, err
	}
	key := path.Join(base, fmt.Sprintf("%s-%s%s", stem, hex.EncodeToString(suffix), ext))

	info, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata:    map[string]string{"original-filename": filename},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}
	s.log.Info("file_upload", zap.String("path", key), zap.Int64("size", info.Size))
	e := s.entry(info)
	return &e, nil
}

// sanitizeName reduces a user supplied name to a slug.
func sanitizeName(name string) string {
	return slug.Make(name)
}
