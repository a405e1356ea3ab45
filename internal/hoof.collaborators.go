package internal

import (
	"context"
	"time"
)

// ResourceReader is the read side of template storage.
type ResourceReader interface {
	Exists(ctx context.Context, path string) (bool, error)
	Read(ctx context.Context, path string) ([]byte, error)
}

// FragmentInfo describes a stored cache entry.
type FragmentInfo struct {
	CreatedAt time.Time
	Size      int64
}

// FragmentStore persists rendered fragments for the cache gate.
type FragmentStore interface {
	Info(ctx context.Context, path string) (FragmentInfo, bool, error)
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, content []byte) error
}

// Translator resolves localization keys for a locale.
type Translator interface {
	Translate(ctx context.Context, locale, key string) (string, bool, error)
}

// Session is the per-visitor state a render may consult.
type Session struct {
	ID        string
	CSRFToken string
}

// Request is the slice of the incoming request a render depends on.
type Request struct {
	Path    string
	Locale  string
	Session *Session
}

// RequestPath returns the request path, empty for a nil request.
func (r *Request) RequestPath() string {
	if r == nil {
		return StringValueEmpty
	}
	return r.Path
}

// RequestLocale returns the request locale, empty for a nil request.
func (r *Request) RequestLocale() string {
	if r == nil {
		return StringValueEmpty
	}
	return r.Locale
}

// CSRFToken returns the session token and whether a session exists.
func (r *Request) CSRFToken() (string, bool) {
	if r == nil || r.Session == nil {
		return StringValueEmpty, false
	}
	return r.Session.CSRFToken, true
}
