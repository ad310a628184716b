// Package blogcontent externalizes inline base64 images of blog HTML.
//
// Rich-text editors embed pasted images as data URIs. On save every
// data:image source is decoded into blogsWall/{blogID}/content_<hash>.<ext>,
// and the src attribute is rewritten to the stored file's public URL.
// Cleanup removes content_* files the saved article no longer references.
package blogcontent

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"wallapi/internal/storage"
)

const (
	// FolderPrefix is the storage prefix holding one folder per blog.
	FolderPrefix = "blogsWall"
	filePrefix   = "content_"
)

// ErrInvalidBlogID is returned for ids that cannot name a folder.
var ErrInvalidBlogID = errors.New("invalid blog id")

var (
	dataImageRe = regexp.MustCompile(`(?i)\bsrc\s*=\s*(?:"data:image/([a-z0-9.+-]+);base64,([^"]*)"|'data:image/([a-z0-9.+-]+);base64,([^']*)')`)
	nbspRe      = regexp.MustCompile(`(?i)&nbsp;|&#160;|&#x0*a0;`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// NormalizeWhitespace turns non-breaking space entities and U+00A0 into plain spaces.
func NormalizeWhitespace(html string) string {
	return strings.ReplaceAll(nbspRe.ReplaceAllString(html, " "), "\u00a0", " ")
}

// Folder returns the storage prefix of a blog's content images.
func Folder(blogID string) string {
	return FolderPrefix + "/" + blogID
}

// Result describes one Process run.
type Result struct {
	HTML    string
	Written []string
}

// Processor rewrites blog HTML against a storage backend.
type Processor struct {
	store    storage.Storage
	maxBytes int64
	log      *zap.Logger
}

// NewProcessor returns a Processor that refuses decoded images larger than maxBytes.
func NewProcessor(store storage.Storage, maxBytes int64, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{store: store, maxBytes: maxBytes, log: log}
}

// Process normalizes whitespace and externalizes inline images. Nothing is
// deleted; run Cleanup once the returned HTML is stored. Sources that cannot
// be decoded, are too large or have an unusable type are left as they are.
func (p *Processor) Process(ctx context.Context, blogID, html string) (*Result, error) {
	if err := checkID(blogID); err != nil {
		return nil, err
	}
	folder := Folder(blogID)
	html = NormalizeWhitespace(html)
	res := &Result{Written: []string{}}

	var out strings.Builder
	last := 0
	for _, m := range dataImageRe.FindAllStringSubmatchIndex(html, -1) {
		var quote byte = '"'
		var subtype, payload string
		if m[2] >= 0 {
			subtype, payload = html[m[2]:m[3]], html[m[4]:m[5]]
		} else {
			quote, subtype, payload = '\'', html[m[6]:m[7]], html[m[8]:m[9]]
		}

		url, written, ok, err := p.storeImage(ctx, folder, subtype, payload)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if written != "" {
			res.Written = append(res.Written, written)
		}

		out.WriteString(html[last:m[0]])
		out.WriteString("src=")
		out.WriteByte(quote)
		out.WriteString(url)
		out.WriteByte(quote)
		last = m[1]
	}
	out.WriteString(html[last:])
	res.HTML = out.String()
	return res, nil
}

// storeImage writes one decoded image. ok is false when the source must stay inline;
// written is empty when an identical file already existed.
func (p *Processor) storeImage(ctx context.Context, folder, subtype, payload string) (url, written string, ok bool, err error) {
	ext := extension(subtype)
	if ext == "" {
		p.log.Warn("blog_content_skip", zap.String("reason", "unsupported_type"), zap.String("type", subtype))
		return "", "", false, nil
	}
	data, derr := decode(payload)
	if derr != nil || len(data) == 0 {
		p.log.Warn("blog_content_skip", zap.String("reason", "undecodable"), zap.String("folder", folder))
		return "", "", false, nil
	}
	if p.maxBytes > 0 && int64(len(data)) > p.maxBytes {
		p.log.Warn("blog_content_skip", zap.String("reason", "too_large"), zap.Int("bytes", len(data)))
		return "", "", false, nil
	}

	sum := sha256.Sum256(data)
	key := path.Join(folder, filePrefix+hex.EncodeToString(sum[:])[:16]+"."+ext)

	if _, serr := p.store.Stat(ctx, key); serr == nil {
		return p.store.URL(key), "", true, nil
	} else if !errors.Is(serr, storage.ErrNotExist) {
		return "", "", false, fmt.Errorf("stat %s: %w", key, serr)
	}

	if _, err := p.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: "image/" + strings.ToLower(subtype),
	}); err != nil {
		return "", "", false, fmt.Errorf("write %s: %w", key, err)
	}
	return p.store.URL(key), key, true, nil
}

// Cleanup deletes the blog's content files that html does not reference and
// returns their keys. html must be the stored version of the article.
func (p *Processor) Cleanup(ctx context.Context, blogID, html string) ([]string, error) {
	if err := checkID(blogID); err != nil {
		return nil, err
	}
	folder := Folder(blogID)
	removed := []string{}
	entries, err := p.store.List(ctx, folder)
	if errors.Is(err, storage.ErrNotExist) {
		return removed, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir || !strings.HasPrefix(name, filePrefix) || strings.Contains(html, name) {
			continue
		}
		if err := p.store.Delete(ctx, e.Key); err != nil && !errors.Is(err, storage.ErrNotExist) {
			return nil, fmt.Errorf("remove %s: %w", e.Key, err)
		}
		removed = append(removed, e.Key)
	}
	return removed, nil
}

// Purge deletes every stored file of the blog.
func (p *Processor) Purge(ctx context.Context, blogID string) error {
	if err := checkID(blogID); err != nil {
		return err
	}
	err := p.store.DeletePrefix(ctx, Folder(blogID))
	if errors.Is(err, storage.ErrNotExist) {
		return nil
	}
	return err
}

func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return ErrInvalidBlogID
	}
	return nil
}

func extension(subtype string) string {
	s := strings.ToLower(subtype)
	switch s {
	case "jpeg", "pjpeg", "jpg":
		return "jpg"
	case "svg+xml":
		return "svg"
	case "x-icon", "vnd.microsoft.icon":
		return "ico"
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return s
}

func decode(payload string) ([]byte, error) {
	p := spaceRe.ReplaceAllString(payload, "")
	if data, err := base64.StdEncoding.DecodeString(p); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(p, "="))
}
