package hoof

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-hoof/internal"
)

// ResourceReader is the read side of template storage. Paths are slash
// separated and relative to the reader's root.
type ResourceReader = internal.ResourceReader

// FilesystemReader reads views and translation files below a root
// directory. Paths escaping the root are rejected.
type FilesystemReader struct {
	root string
}

// NewFilesystemReader creates a reader rooted at root.
func NewFilesystemReader(root string) (*FilesystemReader, error) {
	if root == StringValueEmpty {
		return nil, cuserr.NewValidationError(ErrCodeConfig, ErrMsgEmptyRoot).
			WithMetadata(MetaKeyKind, KindConfig)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, NewConfigError(ErrMsgEmptyRoot, MetaKeyPath, err)
	}
	return &FilesystemReader{root: abs}, nil
}

// Root returns the absolute root directory.
func (r *FilesystemReader) Root() string {
	return r.root
}

// resolve maps a slash path onto the filesystem below root.
func (r *FilesystemReader) resolve(p string) (string, error) {
	return resolveBelow(r.root, p)
}

// Exists reports whether a regular file exists at p.
func (r *FilesystemReader) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	full, err := r.resolve(p)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, cuserr.WrapStdError(err, ErrCodeStore, ErrMsgResourceReadFailed).
			WithMetadata(MetaKeyPath, p)
	}
	return info.Mode().IsRegular(), nil
}

// Read returns the content of the file at p.
func (r *FilesystemReader) Read(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := r.resolve(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewResourceNotFoundError(p)
		}
		return nil, cuserr.WrapStdError(err, ErrCodeStore, ErrMsgResourceReadFailed).
			WithMetadata(MetaKeyPath, p)
	}
	return data, nil
}

// resolveBelow joins the slash path p onto root and rejects results
// outside root.
func resolveBelow(root, p string) (string, error) {
	if strings.TrimSpace(p) == StringValueEmpty {
		return StringValueEmpty, cuserr.NewValidationError(ErrCodeStore, ErrMsgEmptyPath)
	}
	if strings.Contains(p, "\\") || hasDotDot(p) {
		return StringValueEmpty, cuserr.NewValidationError(ErrCodeStore, ErrMsgPathTraversal).
			WithMetadata(MetaKeyPath, p)
	}
	full := filepath.Join(root, filepath.FromSlash(path.Clean("/"+p)))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return StringValueEmpty, cuserr.NewValidationError(ErrCodeStore, ErrMsgPathTraversal).
			WithMetadata(MetaKeyPath, p)
	}
	return full, nil
}

func hasDotDot(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// MemoryReader serves views from a map. It is intended for tests and for
// embedding views in a binary.
type MemoryReader struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryReader creates a reader over files, keyed by slash path.
func NewMemoryReader(files map[string]string) *MemoryReader {
	r := &MemoryReader{files: make(map[string][]byte, len(files))}
	for p, content := range files {
		r.files[cleanKey(p)] = []byte(content)
	}
	return r
}

// Set adds or replaces the file at p.
func (r *MemoryReader) Set(p, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[cleanKey(p)] = []byte(content)
}

// Delete removes the file at p.
func (r *MemoryReader) Delete(p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, cleanKey(p))
}

// Exists reports whether a file is stored at p.
func (r *MemoryReader) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.files[cleanKey(p)]
	return ok, nil
}

// Read returns a copy of the file stored at p.
func (r *MemoryReader) Read(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	content, ok := r.files[cleanKey(p)]
	if !ok {
		return nil, NewResourceNotFoundError(p)
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

func cleanKey(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

// Ensure both readers implement ResourceReader
var (
	_ ResourceReader = (*FilesystemReader)(nil)
	_ ResourceReader = (*MemoryReader)(nil)
)
