// Package uploads validates and stores files attached to records.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/folio/internal/apperr"
)

// URLPrefix is the web path under which the assets directory is served.
const URLPrefix = "/assets/"

// Policy constrains one kind of upload.
type Policy struct {
	Dir      string            // sub-directory of the assets root
	MaxBytes int64             // inclusive size limit
	Allowed  map[string]string // sniffed MIME type → file extension
}

var (
	imageTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/gif":  ".gif",
	}

	ProjectImage = Policy{Dir: "images/projects", MaxBytes: 5 << 20, Allowed: imageTypes}
	Certificate  = Policy{Dir: "certificates", MaxBytes: 10 << 20, Allowed: map[string]string{
		"application/pdf": ".pdf",
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"image/gif":       ".gif",
	}}
	Avatar = Policy{Dir: "images/avatars", MaxBytes: 5 << 20, Allowed: imageTypes}
)

// File is an accepted upload held in memory until it is saved.
type File struct {
	policy Policy
	ext    string
	data   []byte
}

// Store writes accepted uploads under an assets root.
type Store struct {
	root string
}

// NewStore creates the assets root if needed.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("uploads: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: create root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute assets directory.
func (s *Store) Root() string {
	return s.root
}

// Accept reads the part and checks it against p. Rejections wrap
// apperr.ErrUploadRejected. Nothing is written to disk.
func Accept(p Policy, file multipart.File, header *multipart.FileHeader) (*File, error) {
	if header.Size > p.MaxBytes {
		return nil, tooLarge(p, header.Filename)
	}
	data, err := io.ReadAll(io.LimitReader(file, p.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("uploads: read %s: %w", header.Filename, err)
	}
	return AcceptBytes(p, header.Filename, data)
}

// AcceptBytes checks in-memory content against p. The type is sniffed from
// the content; name is only used in error messages.
func AcceptBytes(p Policy, name string, data []byte) (*File, error) {
	if int64(len(data)) > p.MaxBytes {
		return nil, tooLarge(p, name)
	}
	sniffed := http.DetectContentType(data)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	ext, ok := p.Allowed[sniffed]
	if !ok {
		return nil, fmt.Errorf("%w: file type %s is not allowed", apperr.ErrUploadRejected, sniffed)
	}
	return &File{policy: p, ext: ext, data: data}, nil
}

func tooLarge(p Policy, name string) error {
	return fmt.Errorf("%w: %s exceeds %d MB", apperr.ErrUploadRejected, name, p.MaxBytes>>20)
}

// Save writes f under a fresh name and returns its web path.
func (s *Store) Save(f *File) (string, error) {
	dir := filepath.Join(s.root, filepath.FromSlash(f.policy.Dir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("uploads: mkdir: %w", err)
	}
	name := uuid.NewString() + f.ext
	if err := os.WriteFile(filepath.Join(dir, name), f.data, 0o644); err != nil {
		return "", fmt.Errorf("uploads: write: %w", err)
	}
	return URLPrefix + path.Join(f.policy.Dir, name), nil
}

// Remove deletes a previously saved upload by web path. Paths outside the
// assets root and missing files are ignored.
func (s *Store) Remove(webPath string) error {
	if !strings.HasPrefix(webPath, URLPrefix) {
		return nil
	}
	rel := filepath.FromSlash(strings.TrimPrefix(webPath, URLPrefix))
	abs := filepath.Join(s.root, filepath.Clean(rel))
	if !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return fmt.Errorf("uploads: path escapes assets directory: %s", webPath)
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("uploads: remove: %w", err)
	}
	return nil
}
