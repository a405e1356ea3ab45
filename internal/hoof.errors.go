package internal

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures raised while rendering.
type ErrorKind int

const (
	// KindRenderAbort is a hard failure that stops the render.
	KindRenderAbort ErrorKind = iota
	// KindMissingResource means an included, required or extended file is absent.
	KindMissingResource
	// KindEvaluation means the expression sandbox failed.
	KindEvaluation
	// KindInheritance means the parent chain could not be resolved.
	KindInheritance
)

// Error kind names
const (
	KindNameRenderAbort     = "render_abort"
	KindNameMissingResource = "missing_resource"
	KindNameEvaluation      = "evaluation"
	KindNameInheritance     = "inheritance"
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindMissingResource:
		return KindNameMissingResource
	case KindEvaluation:
		return KindNameEvaluation
	case KindInheritance:
		return KindNameInheritance
	default:
		return KindNameRenderAbort
	}
}

// Directive error messages
const (
	ErrMsgMaxDepthExceeded    = "maximum walk depth exceeded"
	ErrMsgTemplateNotFound    = "could not find template"
	ErrMsgRequireMissingFile  = "require directive has no file attribute"
	ErrMsgCircularInheritance = "circular template inheritance"
	ErrMsgInheritanceTooDeep  = "template inheritance chain too deep"
	ErrMsgParentUnresolved    = "parent template declared but not resolved"
	ErrMsgReadFailed          = "reading template source failed"
	ErrMsgParseFailed         = "parsing template markup failed"
	ErrMsgCacheReadFailed     = "reading cached fragment failed"
	ErrMsgCacheWriteFailed    = "writing cached fragment failed"
	ErrMsgPlaceholderFailed   = "placeholder evaluation failed"
	ErrMsgRenderFailed        = "serializing rendered markup failed"
	ErrMsgTranslateFailed     = "translation lookup failed"
	ErrMsgDirectiveExists     = "directive already registered"
	ErrMsgDirectiveNil        = "directive cannot be nil"
	ErrMsgDirectiveEmptyName  = "directive name cannot be empty"
)

// DirectiveError is raised by the walker and by directive handlers.
type DirectiveError struct {
	Kind    ErrorKind
	Message string
	Tag     string
	Path    string
	Cause   error
}

// NewDirectiveError creates a directive error without a cause.
func NewDirectiveError(kind ErrorKind, message, tag, path string) *DirectiveError {
	return &DirectiveError{Kind: kind, Message: message, Tag: tag, Path: path}
}

// NewDirectiveErrorWithCause creates a directive error wrapping cause.
func NewDirectiveErrorWithCause(kind ErrorKind, message, tag, path string, cause error) *DirectiveError {
	return &DirectiveError{Kind: kind, Message: message, Tag: tag, Path: path, Cause: cause}
}

// Error implements the error interface.
func (e *DirectiveError) Error() string {
	result := e.Message
	if e.Path != StringValueEmpty {
		result = fmt.Sprintf(ErrFmtWithPath, result, e.Path)
	}
	if e.Tag != StringValueEmpty {
		result = fmt.Sprintf(ErrFmtWithTag, result, e.Tag)
	}
	if e.Cause != nil {
		result = fmt.Sprintf(ErrFmtWithCause, result, e.Cause)
	}
	return result
}

// Unwrap returns the underlying cause.
func (e *DirectiveError) Unwrap() error {
	return e.Cause
}

// KindOf reports the kind of the first DirectiveError in err's chain.
// Expression errors report KindEvaluation, anything else KindRenderAbort.
func KindOf(err error) ErrorKind {
	var de *DirectiveError
	if errors.As(err, &de) {
		return de.Kind
	}
	var ee *ExprEvalError
	if errors.As(err, &ee) {
		return KindEvaluation
	}
	var pe *ExprParseError
	if errors.As(err, &pe) {
		return KindEvaluation
	}
	var te *ExprTokenError
	if errors.As(err, &te) {
		return KindEvaluation
	}
	var fe *FuncError
	if errors.As(err, &fe) {
		return KindEvaluation
	}
	var fae *FuncArgError
	if errors.As(err, &fae) {
		return KindEvaluation
	}
	return KindRenderAbort
}
