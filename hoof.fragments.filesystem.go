package hoof

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how FilesystemFragmentStore encodes entries on disk.
type Compression string

// Supported compressions
const (
	CompressionNone Compression = ""
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

// File suffixes of compressed entries
const (
	suffixZstd = ".zst"
	suffixLZ4  = ".lz4"
	tempPrefix = ".hoof-"
)

// zstdEncoder and zstdDecoder are shared; both are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("hoof: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("hoof: zstd decoder initialization failed: " + err.Error())
	}

	RegisterFragmentStoreDriver(FragmentStoreDriverFilesystem, &FilesystemFragmentStoreDriver{})
}

// ParseCompression validates a compression name.
func ParseCompression(name string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(name))); c {
	case CompressionNone, CompressionZstd, CompressionLZ4:
		return c, nil
	default:
		return CompressionNone, &StoreError{Message: ErrMsgUnknownCompression, Path: name}
	}
}

// suffix returns the file suffix appended to entries.
func (c Compression) suffix() string {
	switch c {
	case CompressionZstd:
		return suffixZstd
	case CompressionLZ4:
		return suffixLZ4
	default:
		return StringValueEmpty
	}
}

func (c Compression) encode(content []byte) ([]byte, error) {
	switch c {
	case CompressionZstd:
		return zstdEncoder.EncodeAll(content, nil), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(content); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return content, nil
	}
}

func (c Compression) decode(stored []byte) ([]byte, error) {
	switch c {
	case CompressionZstd:
		return zstdDecoder.DecodeAll(stored, nil)
	case CompressionLZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(stored)))
	default:
		return stored, nil
	}
}

// FilesystemFragmentStore stores each fragment as a file below a root
// directory. The file modification time is the entry's creation time.
//
// Directory structure:
//
//	<root>/
//	  hoof/cache/
//	    <hash>.mix[.zst|.lz4]
//	    <hash>.html[.zst|.lz4]
type FilesystemFragmentStore struct {
	mu          sync.RWMutex
	root        string
	compression Compression
}

// FilesystemFragmentStoreDriver is the driver for creating FilesystemFragmentStore instances.
type FilesystemFragmentStoreDriver struct{}

// Open creates a FilesystemFragmentStore. The connection string is the root
// directory, optionally followed by "?compress=zstd" or "?compress=lz4".
func (d *FilesystemFragmentStoreDriver) Open(connectionString string) (FragmentStore, error) {
	root, query, _ := strings.Cut(connectionString, FilesystemParamSeparator)
	compression := CompressionNone
	if query != StringValueEmpty {
		values, err := url.ParseQuery(query)
		if err != nil {
			return nil, &StoreError{Message: ErrMsgUnknownCompression, Path: query, Cause: err}
		}
		compression, err = ParseCompression(values.Get(FilesystemCompressParam))
		if err != nil {
			return nil, err
		}
	}
	return NewFilesystemFragmentStore(root, compression)
}

// NewFilesystemFragmentStore creates a store rooted at root. The root is
// created when missing.
func NewFilesystemFragmentStore(root string, compression Compression) (*FilesystemFragmentStore, error) {
	if root == StringValueEmpty {
		return nil, &StoreError{Message: ErrMsgEmptyRoot}
	}
	if _, err := ParseCompression(string(compression)); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, FilesystemDirPermissions); err != nil {
		return nil, &StoreError{Message: ErrMsgResourceWriteFailed, Path: root, Cause: err}
	}
	return &FilesystemFragmentStore{root: root, compression: compression}, nil
}

// Compression returns the store's on-disk encoding.
func (s *FilesystemFragmentStore) Compression() Compression {
	return s.compression
}

func (s *FilesystemFragmentStore) file(path string) (string, error) {
	full, err := resolveBelow(s.root, path)
	if err != nil {
		return StringValueEmpty, err
	}
	return full + s.compression.suffix(), nil
}

// Info returns the modification time and stored size of the entry at path.
func (s *FilesystemFragmentStore) Info(ctx context.Context, path string) (FragmentInfo, bool, error) {
	if err := ctx.Err(); err != nil {
		return FragmentInfo{}, false, err
	}
	full, err := s.file(path)
	if err != nil {
		return FragmentInfo{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FragmentInfo{}, false, nil
		}
		return FragmentInfo{}, false, &StoreError{Message: ErrMsgResourceReadFailed, Path: path, Cause: err}
	}
	return FragmentInfo{CreatedAt: info.ModTime(), Size: info.Size()}, true, nil
}

// Read returns the decoded content of the entry at path.
func (s *FilesystemFragmentStore) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.file(path)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewResourceNotFoundError(path)
		}
		return nil, &StoreError{Message: ErrMsgResourceReadFailed, Path: path, Cause: err}
	}
	content, err := s.compression.decode(stored)
	if err != nil {
		return nil, &StoreError{Message: ErrMsgDecompressFailed, Path: path, Cause: err}
	}
	return content, nil
}

// Write encodes content and replaces the entry at path. The file is
// written to a temporary name first and renamed into place.
func (s *FilesystemFragmentStore) Write(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.file(path)
	if err != nil {
		return err
	}
	encoded, err := s.compression.encode(content)
	if err != nil {
		return &StoreError{Message: ErrMsgCompressFailed, Path: path, Cause: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, FilesystemDirPermissions); err != nil {
		return &StoreError{Message: ErrMsgResourceWriteFailed, Path: path, Cause: err}
	}
	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return &StoreError{Message: ErrMsgResourceWriteFailed, Path: path, Cause: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &StoreError{Message: ErrMsgResourceWriteFailed, Path: path, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &StoreError{Message: ErrMsgResourceWriteFailed, Path: path, Cause: err}
	}
	if err := os.Chmod(tmpName, FilesystemFilePermissions); err != nil {
		_ = os.Remove(tmpName)
		return &StoreError{Message: ErrMsgResourceWriteFailed, Path: path, Cause: err}
	}
	if err := os.Rename(tmpName, full); err != nil {
		_ = os.Remove(tmpName)
		return &StoreError{Message: ErrMsgResourceWriteFailed, Path: path, Cause: err}
	}
	return nil
}

// Ensure FilesystemFragmentStore implements FragmentStore
var _ FragmentStore = (*FilesystemFragmentStore)(nil)
