package internal

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ElementDirective handles an element whose tag name it owns. It must
// leave el detached or replaced when it returns without error.
type ElementDirective interface {
	Name() string
	Execute(ctx context.Context, w *Walker, rs *RenderState, el *html.Node) error
}

// AttributeDirective handles one directive attribute on an element. It
// must remove the attribute it handled.
type AttributeDirective interface {
	Name() string
	Apply(ctx context.Context, w *Walker, rs *RenderState, el *html.Node, attr html.Attribute) error
}

// Registry maps tag names and attribute names to directive handlers.
// Attribute names without an exact handler fall back to the bind handler.
type Registry struct {
	elements   map[string]ElementDirective
	attributes map[string]AttributeDirective
	fallback   AttributeDirective
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewRegistry creates an empty directive registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgRegistryCreated)
	return &Registry{
		elements:   make(map[string]ElementDirective),
		attributes: make(map[string]AttributeDirective),
		logger:     logger,
	}
}

// NewDefaultRegistry returns a registry with every built-in directive.
func NewDefaultRegistry(logger *zap.Logger) *Registry {
	r := NewRegistry(logger)
	RegisterBuiltinDirectives(r)
	return r
}

// RegisterElement adds an element directive. First registration wins.
func (r *Registry) RegisterElement(d ElementDirective) error {
	if d == nil {
		return NewRegistryError(ErrMsgDirectiveNil, StringValueEmpty)
	}
	name := d.Name()
	if name == StringValueEmpty {
		return NewRegistryError(ErrMsgDirectiveEmptyName, StringValueEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.elements[name]; exists {
		return NewRegistryError(ErrMsgDirectiveExists, name)
	}
	r.elements[name] = d
	r.logger.Debug(LogMsgDirectiveRegistered, zap.String(LogFieldTag, name))
	return nil
}

// RegisterAttribute adds an attribute directive keyed by its full
// attribute name, prefix included.
func (r *Registry) RegisterAttribute(d AttributeDirective) error {
	if d == nil {
		return NewRegistryError(ErrMsgDirectiveNil, StringValueEmpty)
	}
	name := d.Name()
	if name == StringValueEmpty {
		return NewRegistryError(ErrMsgDirectiveEmptyName, StringValueEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.attributes[name]; exists {
		return NewRegistryError(ErrMsgDirectiveExists, name)
	}
	r.attributes[name] = d
	r.logger.Debug(LogMsgDirectiveRegistered, zap.String(LogFieldAttribute, name))
	return nil
}

// SetAttributeFallback sets the handler for directive attributes with no
// exact registration.
func (r *Registry) SetAttributeFallback(d AttributeDirective) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = d
}

// MustRegisterElement adds an element directive and panics on error.
func (r *Registry) MustRegisterElement(d ElementDirective) {
	if err := r.RegisterElement(d); err != nil {
		panic(err)
	}
}

// MustRegisterAttribute adds an attribute directive and panics on error.
func (r *Registry) MustRegisterAttribute(d AttributeDirective) {
	if err := r.RegisterAttribute(d); err != nil {
		panic(err)
	}
}

// Element returns the directive for a tag name.
func (r *Registry) Element(tag string) (ElementDirective, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.elements[tag]
	return d, ok
}

// Attribute returns the directive for a directive attribute name. The
// bare prefix never dispatches.
func (r *Registry) Attribute(key string) (AttributeDirective, bool) {
	if !IsDirectiveAttr(key) || key == AttrExpression {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if d, ok := r.attributes[key]; ok {
		return d, true
	}
	if r.fallback != nil {
		return r.fallback, true
	}
	return nil, false
}

// Elements returns the registered tag names in sorted order.
func (r *Registry) Elements() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.elements))
	for name := range r.elements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegistryError represents a registry operation error
type RegistryError struct {
	Message string
	Name    string
}

// NewRegistryError creates a new registry error
func NewRegistryError(message, name string) *RegistryError {
	return &RegistryError{Message: message, Name: name}
}

// Error implements the error interface
func (e *RegistryError) Error() string {
	if e.Name != StringValueEmpty {
		return fmt.Sprintf(ErrFmtWithTag, e.Message, e.Name)
	}
	return e.Message
}

// RegisterBuiltinDirectives registers every built-in directive.
func RegisterBuiltinDirectives(r *Registry) {
	r.MustRegisterElement(ifDirective{})
	r.MustRegisterElement(caseDirective{})
	r.MustRegisterElement(forDirective{})
	r.MustRegisterElement(eachDirective{})
	r.MustRegisterElement(includeDirective{required: false})
	r.MustRegisterElement(includeDirective{required: true})
	r.MustRegisterElement(blockDirective{})
	r.MustRegisterElement(cachedDirective{})
	r.MustRegisterElement(csrfDirective{})
	r.MustRegisterElement(langDirective{})
	r.MustRegisterElement(debugDirective{})
	for _, tag := range []string{TagElif, TagElse, TagWhen, TagDefault, TagExtends} {
		r.MustRegisterElement(strayDirective{tag: tag})
	}

	r.MustRegisterAttribute(classDirective{})
	r.MustRegisterAttribute(hideDirective{})
	r.SetAttributeFallback(bindDirective{})
}
