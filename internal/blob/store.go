// Package blob stores uploaded files on the local filesystem.  Objects are
// addressed by a reference of the form "<dir>/<uuid><ext>" relative to the
// store root; only directories marked public are reachable over HTTP.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	// ErrEmpty is returned when the uploaded object has no content.
	ErrEmpty = errors.New("empty upload")
	// ErrTooLarge is returned when the object exceeds Policy.MaxBytes.
	ErrTooLarge = errors.New("upload too large")
	// ErrUnsupportedMedia is returned when the sniffed content type is not
	// one of Policy.Kinds.
	ErrUnsupportedMedia = errors.New("unsupported media type")
	// ErrInvalidRef is returned by Remove for references that escape the root.
	ErrInvalidRef = errors.New("invalid blob reference")
)

// Object is an upload waiting to be stored.  Name is the client supplied
// file name and is only used for logging; the stored name is generated.
type Object struct {
	Name string
	Body io.Reader
}

// Policy restricts what may be stored and where.
type Policy struct {
	Dir      string   // sub directory under the root, e.g. "costumes"
	Kinds    []string // accepted MIME types, detected from content
	MaxBytes int64
}

// Images accepts listing pictures.  They are served publicly.
func Images(maxBytes int64) Policy {
	return Policy{Dir: "costumes", Kinds: []string{"image/jpeg", "image/png", "image/gif"}, MaxBytes: maxBytes}
}

// IDDocuments accepts identity documents attached to reservations.  This
// directory is never exposed over HTTP.
func IDDocuments(maxBytes int64) Policy {
	return Policy{Dir: "id_documents", Kinds: []string{"image/jpeg", "image/png", "application/pdf"}, MaxBytes: maxBytes}
}

// Local is a filesystem backed store.
type Local struct {
	root    string
	baseURL string // scheme://host, may be empty for relative links
	prefix  string // URL path under which Root is served
}

// NewLocal creates root if needed and returns a store writing below it.
func NewLocal(root, baseURL, publicPrefix string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob root: %w", err)
	}
	return &Local{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		prefix:  "/" + strings.Trim(publicPrefix, "/"),
	}, nil
}

// Root returns the directory objects are written to.
func (s *Local) Root() string { return s.root }

// Store validates obj against p and writes it under p.Dir.  The content is
// read once, up to MaxBytes+1 bytes, so an oversized body is rejected
// without being buffered in full.
func (s *Local) Store(ctx context.Context, obj Object, p Policy) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if obj.Body == nil {
		return "", ErrEmpty
	}
	data, err := io.ReadAll(io.LimitReader(obj.Body, p.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	switch {
	case len(data) == 0:
		return "", ErrEmpty
	case int64(len(data)) > p.MaxBytes:
		return "", ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if !accepts(mt, p.Kinds) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, mt.String())
	}

	dir := filepath.Join(s.root, p.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("blob dir: %w", err)
	}
	name := uuid.NewString() + mt.Extension()
	if err := writeFile(filepath.Join(dir, name), data); err != nil {
		return "", err
	}
	return path.Join(p.Dir, name), nil
}

// Remove deletes the object behind ref.  A missing object is not an error.
func (s *Local) Remove(_ context.Context, ref string) error {
	full, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// URL returns the public link of ref.
func (s *Local) URL(ref string) string {
	return s.baseURL + path.Join(s.prefix, ref)
}

func (s *Local) resolve(ref string) (string, error) {
	clean := path.Clean("/" + ref)
	if ref == "" || clean == "/" || clean != "/"+ref {
		return "", ErrInvalidRef
	}
	return filepath.Join(s.root, filepath.FromSlash(clean[1:])), nil
}

func accepts(mt *mimetype.MIME, kinds []string) bool {
	for _, k := range kinds {
		if mt.Is(k) {
			return true
		}
	}
	return false
}

func writeFile(name string, data []byte) error {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create blob: %w", err)
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return fmt.Errorf("write blob: %w", err)
	}
	return f.Close()
}
