package hoof

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/itsatony/go-hoof/internal"
)

// FragmentStore persists rendered fragments and pages for the cache gate.
type FragmentStore = internal.FragmentStore

// FragmentInfo describes a stored cache entry.
type FragmentInfo = internal.FragmentInfo

// FragmentStoreDriver creates fragment stores from a connection string.
type FragmentStoreDriver interface {
	Open(connectionString string) (FragmentStore, error)
}

// Fragment store error message constants
const (
	ErrMsgNilStoreDriver           = "fragment store driver is nil"
	ErrMsgStoreDriverRegistered    = "fragment store driver already registered"
	ErrMsgStoreDriverNotFound      = "fragment store driver not found"
	ErrMsgStoreClosed              = "fragment store is closed"
	ErrMsgUnknownCompression       = "unknown fragment compression"
	ErrMsgCompressFailed           = "compressing fragment failed"
	ErrMsgDecompressFailed         = "decompressing fragment failed"
	ErrMsgPostgresEmptyConnString  = "PostgreSQL connection string is empty"
	ErrMsgPostgresConnectionFailed = "failed to connect to PostgreSQL"
	ErrMsgPostgresQueryFailed      = "PostgreSQL query failed"
	ErrMsgPostgresMigrationFailed  = "PostgreSQL migration failed"
	ErrMsgPostgresAlreadyClosed    = "PostgreSQL fragment store is already closed"
)

// Fragment store driver registry
var (
	storeDriversMu sync.RWMutex
	storeDrivers   = make(map[string]FragmentStoreDriver)
)

// RegisterFragmentStoreDriver registers a fragment store driver by name.
// This is typically called from a driver's init() function.
// Panics if a driver with the same name is already registered.
func RegisterFragmentStoreDriver(name string, driver FragmentStoreDriver) {
	storeDriversMu.Lock()
	defer storeDriversMu.Unlock()

	if driver == nil {
		panic(ErrMsgNilStoreDriver)
	}
	if _, exists := storeDrivers[name]; exists {
		panic(ErrMsgStoreDriverRegistered + ": " + name)
	}
	storeDrivers[name] = driver
}

// OpenFragmentStore opens a fragment store using the named driver.
// The connection string format is driver-specific.
//
// Example:
//
//	store, err := hoof.OpenFragmentStore("memory", "")
//	store, err := hoof.OpenFragmentStore("filesystem", "/var/cache/hoof?compress=zstd")
//	store, err := hoof.OpenFragmentStore("postgres", "postgres://localhost/hoof?sslmode=disable")
func OpenFragmentStore(driverName, connectionString string) (FragmentStore, error) {
	storeDriversMu.RLock()
	driver, ok := storeDrivers[driverName]
	storeDriversMu.RUnlock()

	if !ok {
		return nil, NewStoreDriverNotFoundError(driverName)
	}
	return driver.Open(connectionString)
}

// ListFragmentStoreDrivers returns the sorted names of all registered drivers.
func ListFragmentStoreDrivers() []string {
	storeDriversMu.RLock()
	defer storeDriversMu.RUnlock()

	names := make([]string, 0, len(storeDrivers))
	for name := range storeDrivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StoreError represents a fragment store failure.
type StoreError struct {
	Message string
	Path    string
	Cause   error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	result := e.Message
	if e.Path != StringValueEmpty {
		result += ": " + e.Path
	}
	if e.Cause != nil {
		result += ": " + e.Cause.Error()
	}
	return result
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// memoryFragment is one stored entry.
type memoryFragment struct {
	content   []byte
	createdAt time.Time
}

// MemoryFragmentStore keeps fragments in memory. All data is lost when the
// process terminates.
type MemoryFragmentStore struct {
	mu        sync.RWMutex
	fragments map[string]memoryFragment
	now       func() time.Time
	closed    bool
}

// MemoryFragmentStoreDriver is the driver for creating MemoryFragmentStore instances.
type MemoryFragmentStoreDriver struct{}

func init() {
	RegisterFragmentStoreDriver(FragmentStoreDriverMemory, &MemoryFragmentStoreDriver{})
}

// Open creates a new MemoryFragmentStore. The connection string is ignored.
func (d *MemoryFragmentStoreDriver) Open(_ string) (FragmentStore, error) {
	return NewMemoryFragmentStore(), nil
}

// NewMemoryFragmentStore creates an empty in-memory store.
func NewMemoryFragmentStore() *MemoryFragmentStore {
	return NewMemoryFragmentStoreWithClock(time.Now)
}

// NewMemoryFragmentStoreWithClock creates an in-memory store stamping
// entries with now. It lets tests control entry age.
func NewMemoryFragmentStoreWithClock(now func() time.Time) *MemoryFragmentStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryFragmentStore{
		fragments: make(map[string]memoryFragment),
		now:       now,
	}
}

// Info returns the creation time and size of the entry at path.
func (s *MemoryFragmentStore) Info(ctx context.Context, path string) (FragmentInfo, bool, error) {
	if err := ctx.Err(); err != nil {
		return FragmentInfo{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return FragmentInfo{}, false, &StoreError{Message: ErrMsgStoreClosed}
	}
	f, ok := s.fragments[path]
	if !ok {
		return FragmentInfo{}, false, nil
	}
	return FragmentInfo{CreatedAt: f.createdAt, Size: int64(len(f.content))}, true, nil
}

// Read returns a copy of the content stored at path.
func (s *MemoryFragmentStore) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, &StoreError{Message: ErrMsgStoreClosed}
	}
	f, ok := s.fragments[path]
	if !ok {
		return nil, NewResourceNotFoundError(path)
	}
	out := make([]byte, len(f.content))
	copy(out, f.content)
	return out, nil
}

// Write stores content at path, replacing any previous entry.
func (s *MemoryFragmentStore) Write(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &StoreError{Message: ErrMsgStoreClosed}
	}
	stored := make([]byte, len(content))
	copy(stored, content)
	s.fragments[path] = memoryFragment{content: stored, createdAt: s.now()}
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryFragmentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fragments)
}

// Close releases the store. Further calls fail.
func (s *MemoryFragmentStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.fragments = nil
	return nil
}

// Ensure MemoryFragmentStore implements FragmentStore
var _ FragmentStore = (*MemoryFragmentStore)(nil)
