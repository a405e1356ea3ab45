package internal

import (
	"context"
	"encoding/hex"
	"path"
	"time"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"
)

// CacheGate decides whether a stored rendering is fresh and persists new
// ones. Entries are never deleted, only overwritten.
type CacheGate struct {
	store  FragmentStore
	dir    string
	now    func() time.Time
	logger *zap.Logger
}

// NewCacheGate creates a gate over store rooted at dir. A nil clock uses
// time.Now.
func NewCacheGate(store FragmentStore, dir string, now func() time.Time, logger *zap.Logger) *CacheGate {
	if dir == StringValueEmpty {
		dir = DefaultCacheDir
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheGate{store: store, dir: dir, now: now, logger: logger}
}

// Key derives the cache key for a request path and a disambiguator.
func Key(requestPath, disambiguator string) string {
	sum := blake3.Sum256([]byte(requestPath + CacheKeySeparator + disambiguator))
	return hex.EncodeToString(sum[:])
}

// FragmentPath is the storage path of a cached fragment.
func (g *CacheGate) FragmentPath(key string) string {
	return path.Join(g.dir, key+DefaultFragmentSuffix)
}

// PagePath is the storage path of a cached page.
func (g *CacheGate) PagePath(key string) string {
	return path.Join(g.dir, key+DefaultPageSuffix)
}

// Lookup returns the content at p when it is younger than ttl.
func (g *CacheGate) Lookup(ctx context.Context, p string, ttl time.Duration) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	info, ok, err := g.store.Info(ctx, p)
	if err != nil {
		return nil, false, NewDirectiveErrorWithCause(KindRenderAbort, ErrMsgCacheReadFailed, TagCached, p, err)
	}
	if !ok {
		g.logger.Debug(LogMsgCacheMiss, zap.String(LogFieldPath, p))
		return nil, false, nil
	}
	if g.now().Sub(info.CreatedAt) >= ttl {
		g.logger.Debug(LogMsgCacheStale, zap.String(LogFieldPath, p), zap.Duration(LogFieldTTL, ttl))
		return nil, false, nil
	}

	content, err := g.store.Read(ctx, p)
	if err != nil {
		return nil, false, NewDirectiveErrorWithCause(KindRenderAbort, ErrMsgCacheReadFailed, TagCached, p, err)
	}
	g.logger.Debug(LogMsgCacheHit, zap.String(LogFieldPath, p))
	return content, true, nil
}

// Store writes content at p, replacing any previous entry.
func (g *CacheGate) Store(ctx context.Context, p string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := g.store.Write(ctx, p, content); err != nil {
		return NewDirectiveErrorWithCause(KindRenderAbort, ErrMsgCacheWriteFailed, TagCached, p, err)
	}
	g.logger.Debug(LogMsgCacheWritten, zap.String(LogFieldPath, p), zap.Int(LogFieldSize, len(content)))
	return nil
}
