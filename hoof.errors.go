package hoof

import (
	"errors"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-hoof/internal"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Render errors
	ErrMsgMissingResource = "template resource missing"
	ErrMsgEvaluation      = "expression evaluation failed"
	ErrMsgInheritance     = "template inheritance failed"
	ErrMsgRenderAborted   = "render aborted"

	// Configuration errors
	ErrMsgConfigRead         = "reading config file failed"
	ErrMsgConfigParse        = "parsing config file failed"
	ErrMsgConfigInvalidTTL   = "invalid default ttl"
	ErrMsgConfigInvalidDepth = "max depth must not be negative"
	ErrMsgConfigStoreOpen    = "opening fragment store failed"

	// Resource errors
	ErrMsgEmptyRoot           = "root directory cannot be empty"
	ErrMsgPathTraversal       = "path escapes the root directory"
	ErrMsgEmptyPath           = "resource path cannot be empty"
	ErrMsgResourceNotFound    = "resource not found"
	ErrMsgResourceReadFailed  = "reading resource failed"
	ErrMsgResourceWriteFailed = "writing resource failed"

	// Translation errors
	ErrMsgTranslationParse = "parsing translation file failed"
	ErrMsgLocaleInvalid    = "invalid locale tag"
)

// Error code constants for categorization
const (
	ErrCodeMissingResource = "HOOF_MISSING_RESOURCE"
	ErrCodeEvaluation      = "HOOF_EVALUATION"
	ErrCodeInheritance     = "HOOF_INHERITANCE"
	ErrCodeRenderAbort     = "HOOF_RENDER_ABORT"
	ErrCodeConfig          = "HOOF_CONFIG"
	ErrCodeStore           = "HOOF_STORE"
	ErrCodeTranslation     = "HOOF_TRANSLATION"
	ErrCodeRegistry        = "HOOF_REGISTRY"
)

// Error kind names reported in MetaKeyKind
const (
	KindMissingResource = internal.KindNameMissingResource
	KindEvaluation      = internal.KindNameEvaluation
	KindInheritance     = internal.KindNameInheritance
	KindRenderAbort     = internal.KindNameRenderAbort
	KindConfig          = "config"
	KindStore           = "store"
)

// wrapRenderError converts an error raised by the render pipeline into a
// cuserr error carrying the kind, the template path and the tag.
func wrapRenderError(err error) error {
	if err == nil {
		return nil
	}

	kind := internal.KindOf(err)
	var code, msg string
	switch kind {
	case internal.KindMissingResource:
		code, msg = ErrCodeMissingResource, ErrMsgMissingResource
	case internal.KindEvaluation:
		code, msg = ErrCodeEvaluation, ErrMsgEvaluation
	case internal.KindInheritance:
		code, msg = ErrCodeInheritance, ErrMsgInheritance
	default:
		code, msg = ErrCodeRenderAbort, ErrMsgRenderAborted
	}

	wrapped := cuserr.WrapStdError(err, code, msg).
		WithMetadata(MetaKeyKind, kind.String())

	var de *internal.DirectiveError
	if errors.As(err, &de) {
		if de.Path != StringValueEmpty {
			wrapped = wrapped.WithMetadata(MetaKeyPath, de.Path)
		}
		if de.Tag != StringValueEmpty {
			wrapped = wrapped.WithMetadata(MetaKeyTag, de.Tag)
		}
	}
	return wrapped
}

// NewConfigError creates a configuration error for field.
func NewConfigError(msg, field string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeConfig, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeConfig, msg)
	}
	return err.
		WithMetadata(MetaKeyKind, KindConfig).
		WithMetadata(MetaKeyField, field)
}

// NewResourceNotFoundError creates an error for a missing stored resource.
func NewResourceNotFoundError(path string) error {
	return cuserr.NewNotFoundError(MetaKeyPath, ErrMsgResourceNotFound).
		WithMetadata(MetaKeyKind, KindMissingResource).
		WithMetadata(MetaKeyPath, path)
}

// NewStoreDriverNotFoundError creates an error for an unknown fragment store driver.
func NewStoreDriverNotFoundError(name string) error {
	return cuserr.NewNotFoundError(MetaKeyDriverName, ErrMsgStoreDriverNotFound).
		WithMetadata(MetaKeyKind, KindStore).
		WithMetadata(MetaKeyDriverName, name)
}

// kindOf returns the kind recorded on err, falling back to the kind of the
// internal error it wraps.
func kindOf(err error) string {
	if err == nil {
		return StringValueEmpty
	}
	var ce *cuserr.CustomError
	if errors.As(err, &ce) {
		if kind, ok := ce.GetMetadata(MetaKeyKind); ok {
			return kind
		}
	}
	return internal.KindOf(err).String()
}

// IsMissingResource reports whether err was caused by an absent template,
// required include or stored resource.
func IsMissingResource(err error) bool {
	return kindOf(err) == KindMissingResource
}

// IsInheritanceError reports whether err was caused by a circular or too
// deep extends chain.
func IsInheritanceError(err error) bool {
	return kindOf(err) == KindInheritance
}

// IsEvaluationError reports whether err was raised by the expression sandbox.
func IsEvaluationError(err error) bool {
	return kindOf(err) == KindEvaluation
}
